package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mugendi/entropize/pkg/crop"
	"github.com/mugendi/entropize/pkg/entropy"
	"github.com/mugendi/entropize/pkg/raster"
	"github.com/mugendi/entropize/pkg/source"
)

// Config holds the application configuration
type Config struct {
	Analysis AnalysisConfig `json:"analysis"`
	Source   SourceConfig   `json:"source"`
	Raster   RasterConfig   `json:"raster"`
	Output   OutputConfig   `json:"output"`
	Server   ServerConfig   `json:"server"`
}

// AnalysisConfig holds configuration for entropy analysis
type AnalysisConfig struct {
	BlockSize            int     `json:"block_size"`
	HighEntropyThreshold float64 `json:"high_entropy_threshold"`
	MinVisiblePercent    float64 `json:"min_visible_percent"`
}

// SourceConfig holds configuration for image loading
type SourceConfig struct {
	TimeoutSeconds int    `json:"timeout_seconds"`
	UserAgent      string `json:"user_agent"`
	MaxBytes       int64  `json:"max_bytes"`
	MaxPixels      int64  `json:"max_pixels"`
}

// RasterConfig holds configuration for crop materialization
type RasterConfig struct {
	Backend  string `json:"backend"`
	Filter   string `json:"filter"`
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Dir    string `json:"dir"`
	Format string `json:"format"`
	Suffix string `json:"suffix"`
}

// ServerConfig holds configuration for the HTTP API
type ServerConfig struct {
	Addr string `json:"addr"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			BlockSize:            entropy.DefaultBlockSize,
			HighEntropyThreshold: entropy.DefaultHighEntropyThreshold,
			MinVisiblePercent:    crop.DefaultMinVisiblePercent,
		},
		Source: SourceConfig{
			TimeoutSeconds: 30,
			UserAgent:      source.DefaultUserAgent,
			MaxBytes:       source.DefaultMaxBytes,
			MaxPixels:      source.DefaultMaxPixels,
		},
		Raster: RasterConfig{
			Backend:  "imaging",
			Filter:   "lanczos",
			Quality:  85,
			Lossless: false,
		},
		Output: OutputConfig{
			Dir:    "./output",
			Format: "jpg",
			Suffix: "_cropped",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Analysis.BlockSize < 1 {
		return fmt.Errorf("analysis.block_size must be positive")
	}

	if c.Analysis.HighEntropyThreshold <= 0 || c.Analysis.HighEntropyThreshold > 1 {
		return fmt.Errorf("analysis.high_entropy_threshold must be between 0 and 1")
	}

	if c.Analysis.MinVisiblePercent <= 0 || c.Analysis.MinVisiblePercent > 100 {
		return fmt.Errorf("analysis.min_visible_percent must be between 0 and 100")
	}

	if c.Source.TimeoutSeconds < 1 {
		return fmt.Errorf("source.timeout_seconds must be positive")
	}

	if c.Source.MaxBytes < 1 {
		return fmt.Errorf("source.max_bytes must be positive")
	}

	if c.Source.MaxPixels < 1 {
		return fmt.Errorf("source.max_pixels must be positive")
	}

	if _, ok := raster.ByName(c.Raster.Backend); !ok {
		return fmt.Errorf("raster.backend %q is not a known backend", c.Raster.Backend)
	}

	if _, ok := raster.FilterByName(c.Raster.Filter); !ok {
		return fmt.Errorf("raster.filter %q is not a known filter", c.Raster.Filter)
	}

	if c.Raster.Quality < 1 || c.Raster.Quality > 100 {
		return fmt.Errorf("raster.quality must be between 1 and 100")
	}

	switch c.Output.Format {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.format %q is not a supported format", c.Output.Format)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./entropize.json"
	}
	return filepath.Join(home, ".config", "entropize", "config.json")
}

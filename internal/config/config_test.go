package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Analysis.BlockSize != 16 {
		t.Errorf("Expected block size 16, got %d", cfg.Analysis.BlockSize)
	}
	if cfg.Analysis.HighEntropyThreshold != 0.2 {
		t.Errorf("Expected threshold 0.2, got %v", cfg.Analysis.HighEntropyThreshold)
	}
	if cfg.Raster.Backend != "imaging" {
		t.Errorf("Expected imaging backend, got %q", cfg.Raster.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Analysis.BlockSize = 32
	cfg.Server.Addr = ":9090"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if loaded.Analysis.BlockSize != 32 {
		t.Errorf("Expected block size 32, got %d", loaded.Analysis.BlockSize)
	}
	if loaded.Server.Addr != ":9090" {
		t.Errorf("Expected addr :9090, got %q", loaded.Server.Addr)
	}
	// Omitted fields keep their defaults
	if loaded.Raster.Quality != 85 {
		t.Errorf("Expected default quality 85, got %d", loaded.Raster.Quality)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"analysis": {"block_size": 8, "high_entropy_threshold": 0.2, "min_visible_percent": 50}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Analysis.BlockSize != 8 {
		t.Errorf("Expected block size 8, got %d", cfg.Analysis.BlockSize)
	}
	if cfg.Output.Format != "jpg" {
		t.Errorf("Expected default format jpg, got %q", cfg.Output.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero block size", func(c *Config) { c.Analysis.BlockSize = 0 }},
		{"threshold above one", func(c *Config) { c.Analysis.HighEntropyThreshold = 1.5 }},
		{"negative min visible", func(c *Config) { c.Analysis.MinVisiblePercent = -1 }},
		{"zero timeout", func(c *Config) { c.Source.TimeoutSeconds = 0 }},
		{"unknown backend", func(c *Config) { c.Raster.Backend = "gpu" }},
		{"unknown filter", func(c *Config) { c.Raster.Filter = "sinc" }},
		{"quality out of range", func(c *Config) { c.Raster.Quality = 0 }},
		{"unknown format", func(c *Config) { c.Output.Format = "tiff" }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/mugendi/entropize"
	"github.com/mugendi/entropize/internal/config"
	"github.com/mugendi/entropize/pkg/crop"
	"github.com/mugendi/entropize/pkg/probe"
	"github.com/mugendi/entropize/pkg/raster"
	"github.com/mugendi/entropize/pkg/source"
	"github.com/mugendi/entropize/pkg/types"
)

type serveCmd struct {
	Addr string `help:"Listen address (defaults to config server.addr)"`
}

func (cmd *serveCmd) Run(g *Globals) error {
	g.initLogging()

	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	addr := cmd.Addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = log.Logger.WithContext(ctx)

	rast, err := newRasterizer(cfg.Raster.Backend, cfg.Raster.Filter)
	if err != nil {
		return err
	}

	srv := &apiServer{
		cfg:    cfg,
		source: newSource(cfg),
		rast:   rast,
	}
	return srv.Run(ctx, addr)
}

// apiServer exposes the analysis pipeline over HTTP.
type apiServer struct {
	cfg    *config.Config
	source source.Source
	rast   raster.Rasterizer
}

// analyzeRequest is the body of the analyze and crop endpoints. Either a
// source identifier or an HTML element fragment must be given.
type analyzeRequest struct {
	Source    string `json:"source"`
	Element   string `json:"element"`
	Container struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"container"`
	Format  string `json:"format"`
	Quality int    `json:"quality"`
}

func (s *apiServer) Run(ctx context.Context, addr string) error {
	app := fiber.New(fiber.Config{
		Immutable:             true,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Hooks().OnListen(func(listen fiber.ListenData) error {
		log.Ctx(ctx).Info().Msgf("Listening at http://%s:%s", listen.Host, listen.Port)
		return nil
	})

	go func() {
		<-ctx.Done()
		log.Ctx(ctx).Info().Msg("Shutting down...")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to shut down server")
		}
	}()

	app.Get("/api/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": entropize.GetVersion()})
	})

	app.Post("/api/analyze", func(c *fiber.Ctx) error {
		req, err := parseRequest(c)
		if err != nil {
			return err
		}
		_, result, err := s.runAnalysis(c, req)
		if err != nil {
			return err
		}
		return c.JSON(result)
	})

	app.Post("/api/crop", func(c *fiber.Ctx) error {
		req, err := parseRequest(c)
		if err != nil {
			return err
		}
		analyzer, _, err := s.runAnalysis(c, req)
		if err != nil {
			return err
		}
		img, err := analyzer.Materialize(c.Context())
		if err != nil {
			return err
		}

		format := req.Format
		if format == "" {
			format = s.cfg.Output.Format
		}
		quality := req.Quality
		if quality <= 0 {
			quality = s.cfg.Raster.Quality
		}

		var buf bytes.Buffer
		if err := raster.Encode(&buf, img, format, quality, s.cfg.Raster.Lossless); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, raster.MIMEType(format))
		return c.Send(buf.Bytes())
	})

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if err := app.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *apiServer) newAnalyzer() *entropize.Analyzer {
	analyzer := entropize.NewWithConfig(entropize.Config{
		BlockSize:            s.cfg.Analysis.BlockSize,
		HighEntropyThreshold: s.cfg.Analysis.HighEntropyThreshold,
		MinVisiblePercent:    s.cfg.Analysis.MinVisiblePercent,
	})
	analyzer.SetSource(s.source)
	analyzer.SetRasterizer(s.rast)
	return analyzer
}

// runAnalysis runs one analysis with a request-scoped Analyzer, so
// concurrent requests never share a result cache.
func (s *apiServer) runAnalysis(c *fiber.Ctx, req analyzeRequest) (*entropize.Analyzer, *types.AnalysisResult, error) {
	analyzer := s.newAnalyzer()
	container := types.Dimensions{Width: req.Container.Width, Height: req.Container.Height}

	var result *types.AnalysisResult
	var err error
	if req.Element != "" {
		result, err = analyzer.AnalyzeElement(c.Context(), req.Element)
	} else {
		result, err = analyzer.AnalyzeSource(c.Context(), req.Source, container)
	}
	if err != nil {
		return nil, nil, err
	}
	return analyzer, result, nil
}

func parseRequest(c *fiber.Ctx) (analyzeRequest, error) {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Source == "" && req.Element == "" {
		return req, fiber.NewError(fiber.StatusBadRequest, "source or element is required")
	}
	return req, nil
}

// errorHandler maps pipeline error kinds onto HTTP status codes.
func errorHandler(c *fiber.Ctx, err error) error {
	log.Ctx(c.Context()).Error().
		Err(err).
		Str("path", c.Path()).
		Str("method", c.Method()).
		Msg("Request failed")

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, crop.ErrInvalidDimensions), errors.Is(err, probe.ErrNoSource):
		status = fiber.StatusBadRequest
	case errors.Is(err, source.ErrLoad), errors.Is(err, raster.ErrInvalidRegion):
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

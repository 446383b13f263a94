package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/laptopkerja/contentgen/api/handlers"
	"github.com/laptopkerja/contentgen/config"
	"github.com/laptopkerja/contentgen/internal/metrics"
	"github.com/laptopkerja/contentgen/internal/server"
	"github.com/laptopkerja/contentgen/internal/telemetry"
)

// Server is the contentgen HTTP service.
type Server struct {
	store      *config.Store
	loader     *config.Loader
	configPath string
	logger     *zap.Logger
	otel       *telemetry.Providers

	collector   *metrics.Collector
	pipeline    *pipeline
	reloader    *config.Reloader
	httpManager *server.Manager
}

// NewServer creates the service. otelProviders may be nil.
func NewServer(store *config.Store, loader *config.Loader, configPath string, logger *zap.Logger, otelProviders *telemetry.Providers) *Server {
	return &Server{
		store:      store,
		loader:     loader,
		configPath: configPath,
		logger:     logger,
		otel:       otelProviders,
	}
}

// Start builds the pipeline, starts the config reloader and listens.
func (s *Server) Start() error {
	cfg := s.store.Current()

	if cfg.Metrics.Enabled {
		s.collector = metrics.NewCollector(cfg.Metrics.Namespace, s.logger)
	}

	p, err := buildPipeline(s.store, s.logger, s.collector)
	if err != nil {
		return err
	}
	s.pipeline = p

	if s.configPath != "" {
		s.reloader = config.NewReloader(s.store, s.loader, s.configPath,
			config.WithReloadLogger(s.logger),
			config.WithOnReload(func(_, _ *config.Config) {
				s.logger.Info("configuration reloaded; request settings apply to the next request")
			}))
		if err := s.reloader.Start(context.Background()); err != nil {
			return fmt.Errorf("start config reloader: %w", err)
		}
	}

	s.httpManager = server.NewManager(s.Handler(), server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, s.logger)
	if err := s.httpManager.Start(); err != nil {
		return fmt.Errorf("start HTTP server: %w", err)
	}

	s.logger.Info("server started",
		zap.Int("http_port", cfg.Server.HTTPPort),
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
		zap.Bool("hot_reload_enabled", s.reloader != nil))
	return nil
}

// Handler returns the routed and wrapped HTTP handler. Start must have
// built the pipeline first.
func (s *Server) Handler() http.Handler {
	cfg := s.store.Current()
	mux := http.NewServeMux()

	health := handlers.NewHealthHandler(s.logger)
	health.RegisterCheck(handlers.NewProvidersCheck(s.pipeline.registry.Len))
	mux.HandleFunc("/health", health.HandleHealth)
	mux.HandleFunc("/healthz", health.HandleHealthz)
	mux.HandleFunc("/ready", health.HandleReady)
	mux.HandleFunc("/readyz", health.HandleReady)
	mux.HandleFunc("/version", health.HandleVersion(Version, BuildTime, GitCommit))

	generate := handlers.NewGenerateHandler(s.pipeline.generator, cfg.Server.MaxBodyBytes, s.logger)
	models := handlers.NewModelsHandler(s.pipeline.detector, s.logger)
	mux.HandleFunc("/v1/generate", generate.HandleGenerate)
	mux.HandleFunc("/v1/models", models.HandleModels)

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		OTelTracing(),
		RequestLogger(s.logger),
	}
	if s.collector != nil {
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		middlewares = append(middlewares, MetricsMiddleware(s.collector))
	}
	return Chain(mux, middlewares...)
}

// WaitForShutdown blocks until a signal arrives, then shuts down.
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}
	s.Shutdown()
}

// Shutdown stops the reloader and flushes telemetry.
func (s *Server) Shutdown() {
	s.logger.Info("starting graceful shutdown")
	ctx := context.Background()

	if s.reloader != nil {
		s.reloader.Stop()
	}
	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}
	if err := s.otel.Shutdown(ctx); err != nil {
		s.logger.Error("telemetry shutdown error", zap.Error(err))
	}

	s.logger.Info("graceful shutdown completed")
}

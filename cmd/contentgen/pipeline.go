package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/laptopkerja/contentgen/config"
	"github.com/laptopkerja/contentgen/discovery"
	"github.com/laptopkerja/contentgen/generation"
	"github.com/laptopkerja/contentgen/internal/metrics"
	"github.com/laptopkerja/contentgen/llm"
	llmfactory "github.com/laptopkerja/contentgen/llm/factory"
	"github.com/laptopkerja/contentgen/types"
)

// pipeline is everything a request needs, built once per process.
type pipeline struct {
	registry  *llm.Registry
	generator *generation.Generator
	detector  *discovery.Detector
}

// storeSettings resolves request bounds from the current config snapshot,
// so a reloaded file applies to the next request.
type storeSettings struct {
	store *config.Store
}

func (s storeSettings) Resolve(provider string) types.RequestConfig {
	return config.NewRequestSettings(s.store.Current().Generation, nil).Resolve(provider)
}

// buildPipeline wires registry, transport, generator and detector.
// collector may be nil.
func buildPipeline(store *config.Store, logger *zap.Logger, collector *metrics.Collector) (*pipeline, error) {
	cfg := store.Current()

	registry, err := llmfactory.NewRegistry(cfg.Generation)
	if err != nil {
		return nil, fmt.Errorf("build provider registry: %w", err)
	}

	transportOpts := []llm.TransportOption{llm.WithLogger(logger)}
	genOpts := []generation.Option{
		generation.WithLogger(logger),
		generation.WithStructuredMode(cfg.Generation.StructuredMode),
		generation.WithVision(cfg.Vision),
	}
	detectOpts := []discovery.Option{discovery.WithLogger(logger)}
	if collector != nil {
		transportOpts = append(transportOpts, llm.WithAttemptObserver(collector))
		genOpts = append(genOpts, generation.WithObserver(collector))
		detectOpts = append(detectOpts, discovery.WithObserver(collector))
	}
	transport := llm.NewTransport(transportOpts...)
	settings := storeSettings{store: store}

	generator, err := generation.New(registry, transport, settings, genOpts...)
	if err != nil {
		return nil, fmt.Errorf("build generator: %w", err)
	}
	detector, err := discovery.NewDetector(registry, transport, settings, detectOpts...)
	if err != nil {
		return nil, fmt.Errorf("build detector: %w", err)
	}

	logger.Info("pipeline ready", zap.Strings("providers", registry.Names()))
	return &pipeline{registry: registry, generator: generator, detector: detector}, nil
}

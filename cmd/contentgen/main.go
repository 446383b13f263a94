// =============================================================================
// contentgen entry point
// =============================================================================
//
//	contentgen serve [--config config.yaml]
//	contentgen generate --provider openai --platform TikTok --prompt "..."
//	contentgen models --provider openrouter [--free]
//	contentgen health [--addr http://localhost:8080]
//	contentgen version
//
// Provider API keys are read from CONTENTGEN_PROVIDER_KEY by the CLI
// subcommands and from the X-Provider-Key header by the server.
// =============================================================================
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/laptopkerja/contentgen/config"
	"github.com/laptopkerja/contentgen/discovery"
	"github.com/laptopkerja/contentgen/internal/telemetry"
	llmfactory "github.com/laptopkerja/contentgen/llm/factory"
	"github.com/laptopkerja/contentgen/types"
)

// Build information, injected with -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// providerKeyEnv holds the backend API key for the CLI subcommands.
const providerKeyEnv = "CONTENTGEN_PROVIDER_KEY"

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "generate":
		err = runGenerate(os.Args[2:], os.Stdout)
	case "models":
		err = runModels(os.Args[2:], os.Stdout)
	case "health":
		err = runHealthCheck(os.Args[2:])
	case "version":
		printVersion(os.Stdout)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// serve
// =============================================================================

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	_ = fs.Parse(args)

	loader, cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting contentgen",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	otelProviders, err := telemetry.Init(cfg.Telemetry, logger,
		telemetry.WithProviders(llmfactory.Providers),
		telemetry.WithStructuredMode(cfg.Generation.StructuredMode))
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	srv := NewServer(config.NewStore(cfg), loader, *configPath, logger, otelProviders)
	if err := srv.Start(); err != nil {
		return err
	}
	srv.WaitForShutdown()

	logger.Info("contentgen stopped")
	return nil
}

// =============================================================================
// generate / models
// =============================================================================

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func runGenerate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	provider := fs.String("provider", "", "Provider id; empty returns the normalized fallback")
	model := fs.String("model", "", "Model id; empty uses the provider default")
	platform := fs.String("platform", "TikTok", "Target platform")
	topic := fs.String("topic", "", "Topic or main keyword")
	language := fs.String("language", "Indonesian", "Output language")
	promptText := fs.String("prompt", "", "Compiled brief")
	fallbackTitle := fs.String("fallback-title", "", "Fallback title")
	var images stringList
	fs.Var(&images, "image", "Image URL or data URL (repeatable)")
	_ = fs.Parse(args)

	_, cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	// stdout carries the JSON result.
	cfg.Log.OutputPaths = []string{"stderr"}
	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	p, err := buildPipeline(config.NewStore(cfg), logger, nil)
	if err != nil {
		return err
	}

	refs := make([]types.ImageReference, 0, len(images))
	for _, img := range images {
		refs = append(refs, types.URLImage(img))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := p.generator.Generate(ctx, types.GenerationRequest{
		Provider:        *provider,
		Model:           *model,
		APIKey:          os.Getenv(providerKeyEnv),
		Prompt:          *promptText,
		Platform:        *platform,
		Topic:           *topic,
		Language:        *language,
		ImageReferences: refs,
		Fallback:        types.Content{Title: *fallbackTitle},
	})
	if err != nil {
		_ = printJSON(out, errorBody(err))
		return err
	}
	return printJSON(out, result)
}

func runModels(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	provider := fs.String("provider", "", "Provider id")
	free := fs.Bool("free", false, "Only free models")
	_ = fs.Parse(args)

	_, cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	// stdout carries the JSON result.
	cfg.Log.OutputPaths = []string{"stderr"}
	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	p, err := buildPipeline(config.NewStore(cfg), logger, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := p.detector.Detect(ctx, discovery.DetectRequest{
		Provider: *provider,
		APIKey:   os.Getenv(providerKeyEnv),
		FreeOnly: *free,
	})
	if err != nil {
		_ = printJSON(out, errorBody(err))
		return err
	}
	return printJSON(out, result)
}

// errorBody renders a pipeline failure the way the HTTP API does.
func errorBody(err error) any {
	if pe, ok := types.AsProviderError(err); ok {
		return map[string]any{"error": pe, "httpStatus": pe.HTTPStatus()}
	}
	return map[string]any{"error": map[string]string{"message": err.Error()}}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// =============================================================================
// health / version / usage
// =============================================================================

func runHealthCheck(args []string) error {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost:8080", "Server address")
	_ = fs.Parse(args)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(strings.TrimRight(*addr, "/") + "/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}
	fmt.Println("OK")
	return nil
}

func printVersion(out io.Writer) {
	fmt.Fprintf(out, "contentgen %s\n", Version)
	fmt.Fprintf(out, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(out, "  Git Commit: %s\n", GitCommit)
}

func printUsage(out io.Writer) {
	fmt.Fprint(out, `contentgen - structured social and article content generation

Usage:
  contentgen <command> [options]

Commands:
  serve     Start the HTTP server
  generate  Run one generation request and print the result
  models    List the models of a provider
  health    Check a running server
  version   Show version information
  help      Show this help message

Environment:
  CONTENTGEN_PROVIDER_KEY   backend API key for generate and models
  CONTENTGEN_*              configuration overrides
  AI_<PROVIDER>_TIMEOUT_MS, AI_<PROVIDER>_RETRY_COUNT, AI_<PROVIDER>_RETRY_BACKOFF_MS
                            per-provider request bounds

Examples:
  contentgen serve --config /etc/contentgen/config.yaml
  contentgen generate --provider openai --platform "Blog Blogger" --topic "kopi susu" --prompt "..."
  contentgen models --provider openrouter --free
`)
}

// =============================================================================
// config and logger
// =============================================================================

func loadConfig(path string) (*config.Loader, *config.Config, error) {
	loader := config.NewLoader().WithValidator((*config.Config).Validate)
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return loader, cfg, nil
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       encoding == "console",
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/laptopkerja/contentgen/config"
	"github.com/laptopkerja/contentgen/internal/ctxkeys"
	"github.com/laptopkerja/contentgen/internal/telemetry"
	"github.com/laptopkerja/contentgen/llm"
	"github.com/laptopkerja/contentgen/output"
	"github.com/laptopkerja/contentgen/prompt"
	"github.com/laptopkerja/contentgen/types"
	"github.com/laptopkerja/contentgen/vision"
)

// Outcomes reported to the Observer.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeOffline = "offline"
)

// Observer receives one callback set per Generate call.
type Observer interface {
	ObserveGeneration(provider, outcome, classification string, duration time.Duration)
	ObserveStructuredFallback(provider string)
	ObserveParsePath(path string)
}

// SettingsResolver yields the transport bounds for a provider.
type SettingsResolver interface {
	Resolve(provider string) types.RequestConfig
}

// Generator composes contract lookup, prompt assembly, vision routing,
// transport, parsing and normalization for one request. It keeps no
// per-request state and is safe for concurrent use.
type Generator struct {
	registry   *llm.Registry
	transport  *llm.Transport
	settings   SettingsResolver
	logger     *zap.Logger
	tracer     trace.Tracer
	observer   Observer
	structured bool
	vision     config.VisionConfig
	newID      func() string
	now        func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) Option {
	return func(g *Generator) { g.observer = o }
}

// WithTracer sets the tracer for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(g *Generator) {
		if t != nil {
			g.tracer = t
		}
	}
}

// WithStructuredMode toggles structured output requests. Default on.
func WithStructuredMode(on bool) Option {
	return func(g *Generator) { g.structured = on }
}

// WithVision sets image limits and the text fallback policy.
func WithVision(v config.VisionConfig) Option {
	return func(g *Generator) { g.vision = v }
}

// WithIDGenerator replaces the request id source used when the context
// carries no request id.
func WithIDGenerator(fn func() string) Option {
	return func(g *Generator) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// New creates a Generator.
func New(registry *llm.Registry, transport *llm.Transport, settings SettingsResolver, opts ...Option) (*Generator, error) {
	if registry == nil {
		return nil, fmt.Errorf("generation: registry is required")
	}
	if transport == nil {
		return nil, fmt.Errorf("generation: transport is required")
	}
	if settings == nil {
		return nil, fmt.Errorf("generation: settings resolver is required")
	}
	g := &Generator{
		registry:   registry,
		transport:  transport,
		settings:   settings,
		logger:     zap.NewNop(),
		tracer:     telemetry.Tracer(),
		structured: config.DefaultGenerationConfig().StructuredMode,
		vision:     config.DefaultVisionConfig(),
		newID:      uuid.NewString,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(zap.String("component", "generator"))
	return g, nil
}

// GenerateStructuredWithProvider is Generate with positional arguments.
func (g *Generator) GenerateStructuredWithProvider(
	ctx context.Context,
	provider, model, apiKey, promptText, platform, topic, language string,
	imageReferences []types.ImageReference,
	fallback types.Content,
) (*types.GenerationResult, error) {
	return g.Generate(ctx, types.GenerationRequest{
		Provider:        provider,
		Model:           model,
		APIKey:          apiKey,
		Prompt:          promptText,
		Platform:        platform,
		Topic:           topic,
		Language:        language,
		ImageReferences: imageReferences,
		Fallback:        fallback,
	})
}

// Generate runs one request. Without a provider no call is made and the
// normalized fallback is returned. Every failure is a *types.ProviderError
// carrying the request settings and attempts used.
func (g *Generator) Generate(ctx context.Context, req types.GenerationRequest) (*types.GenerationResult, error) {
	start := g.now()
	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	requestID, ok := ctxkeys.RequestID(ctx)
	if !ok {
		requestID = g.newID()
	}
	rt := types.Runtime{
		RequestID:  requestID,
		Provider:   provider,
		VisionMode: string(vision.ModeOff),
	}

	ctx, span := g.tracer.Start(ctx, "generation.generate",
		trace.WithAttributes(
			attribute.String("request_id", rt.RequestID),
			attribute.String("provider", provider),
			attribute.String("platform", req.Platform),
			attribute.Int("images", len(req.ImageReferences)),
		))
	defer span.End()

	refs, err := vision.NormalizeImageReferences(req.ImageReferences, vision.Limits{
		MaxImages:     g.vision.MaxImages,
		MaxImageBytes: g.vision.MaxImageBytes,
	})
	if err != nil {
		return nil, g.fail(span, start, rt, err)
	}

	if provider == "" {
		return g.offline(span, start, rt, req, refs)
	}

	rt.Model = strings.TrimSpace(req.Model)
	cfg := g.settings.Resolve(provider)
	rt.TimeoutMs, rt.RetryCount, rt.RetryBackoffMs = cfg.TimeoutMs, cfg.RetryCount, cfg.RetryBackoffMs

	adapter, ok := g.registry.Lookup(provider)
	if !ok {
		return nil, g.fail(span, start, rt, types.NewProviderError(types.ErrNotImplemented,
			fmt.Sprintf("provider %q is not implemented", provider)).
			WithSource(provider, rt.Model, types.StageValidate))
	}
	if rt.Model == "" {
		rt.Model = adapter.DefaultModel()
	}
	span.SetAttributes(attribute.String("model", rt.Model))

	if strings.TrimSpace(req.APIKey) == "" {
		return nil, g.fail(span, start, rt, types.NewValidationError("apiKey", "an API key is required"))
	}

	adapterVision := adapter.SupportsVision()
	decision, err := vision.Route(provider, rt.Model, refs, vision.Options{
		AllowTextFallback: g.vision.AllowTextFallback,
		AdapterVision:     &adapterVision,
	})
	if err != nil {
		return nil, g.fail(span, start, rt, err)
	}
	rt.VisionMode = string(decision.Mode)
	rt.Warnings = append(rt.Warnings, decision.Warnings...)

	call := llm.Call{
		APIKey:       strings.TrimSpace(req.APIKey),
		Model:        rt.Model,
		SystemPrompt: prompt.BuildSystemPrompt(req.Language, req.Platform),
		UserPrompt:   prompt.BuildUserPrompt(req.Prompt, req.Platform, req.Topic),
		Structured:   g.structured,
	}
	switch decision.Mode {
	case vision.ModeMultimodal:
		call.Images = refs
	case vision.ModeTextFallback:
		call.UserPrompt += prompt.ImageNote(refs)
	}

	completion, err := g.transport.Complete(ctx, adapter, call, cfg)
	if err != nil {
		return nil, g.fail(span, start, rt, err)
	}
	rt.AttemptsUsed = completion.AttemptsUsed
	rt.StructuredMode = completion.StructuredMode
	rt.StructuredFallback = completion.StructuredFallback
	if completion.StructuredFallback && g.observer != nil {
		g.observer.ObserveStructuredFallback(provider)
	}

	parsed, path := output.Parse(completion.Text)
	if g.observer != nil {
		g.observer.ObserveParsePath(string(path))
	}
	if path == output.ParsePathNone {
		perr := types.NewProviderError(types.ErrInvalidJSON, "provider reply contains no parseable content object").
			WithSource(provider, rt.Model, types.StageParse)
		perr.Details.AttemptsUsed = rt.AttemptsUsed
		return nil, g.fail(span, start, rt, perr)
	}
	rt.ParsePath = string(path)

	result := &types.GenerationResult{
		NormalizedContent: output.Normalize(parsed, req.Fallback, req.Platform, req.Topic),
		RawText:           completion.Text,
	}
	return g.succeed(span, start, rt, result, OutcomeSuccess), nil
}

func (g *Generator) offline(span trace.Span, start time.Time, rt types.Runtime, req types.GenerationRequest, refs []types.ImageReference) (*types.GenerationResult, error) {
	decision, err := vision.Route("", "", refs, vision.Options{AllowTextFallback: g.vision.AllowTextFallback})
	if err != nil {
		return nil, g.fail(span, start, rt, err)
	}
	rt.VisionMode = string(decision.Mode)
	rt.Warnings = append(rt.Warnings, decision.Warnings...)

	result := &types.GenerationResult{
		NormalizedContent: output.Normalize(nil, req.Fallback, req.Platform, req.Topic),
	}
	return g.succeed(span, start, rt, result, OutcomeOffline), nil
}

func (g *Generator) succeed(span trace.Span, start time.Time, rt types.Runtime, result *types.GenerationResult, outcome string) *types.GenerationResult {
	elapsed := g.now().Sub(start)
	rt.ElapsedMs = elapsed.Milliseconds()
	result.Runtime = rt

	span.SetAttributes(
		attribute.Int("attempts", rt.AttemptsUsed),
		attribute.String("vision_mode", rt.VisionMode),
		attribute.String("parse_path", rt.ParsePath),
		attribute.Bool("structured_fallback", rt.StructuredFallback),
	)
	span.SetStatus(codes.Ok, "")

	if g.observer != nil {
		g.observer.ObserveGeneration(rt.Provider, outcome, "", elapsed)
	}
	g.logger.Info("generation completed",
		zap.String("request_id", rt.RequestID),
		zap.String("provider", rt.Provider),
		zap.String("model", rt.Model),
		zap.String("outcome", outcome),
		zap.Int("attempts", rt.AttemptsUsed),
		zap.Int64("elapsed_ms", rt.ElapsedMs),
		zap.String("vision_mode", rt.VisionMode),
		zap.String("parse_path", rt.ParsePath),
		zap.Bool("structured_fallback", rt.StructuredFallback))
	return result
}

// fail turns err into a ProviderError carrying the runtime settings.
func (g *Generator) fail(span trace.Span, start time.Time, rt types.Runtime, err error) *types.ProviderError {
	elapsed := g.now().Sub(start)
	perr := llm.MapTransportError(err)
	if perr.Details.Provider == "" {
		perr.Details.Provider = rt.Provider
	}
	if perr.Details.Model == "" {
		perr.Details.Model = rt.Model
	}
	perr.WithRuntime(elapsed.Milliseconds(), perr.Details.AttemptsUsed, types.RequestConfig{
		TimeoutMs:      rt.TimeoutMs,
		RetryCount:     rt.RetryCount,
		RetryBackoffMs: rt.RetryBackoffMs,
	})

	span.RecordError(perr)
	span.SetStatus(codes.Error, string(perr.Code))
	span.SetAttributes(
		attribute.String("error.code", string(perr.Code)),
		attribute.String("error.classification", string(perr.Classification)),
	)

	if g.observer != nil {
		g.observer.ObserveGeneration(rt.Provider, OutcomeError, string(perr.Classification), elapsed)
	}
	g.logger.Warn("generation failed",
		zap.String("request_id", rt.RequestID),
		zap.String("provider", rt.Provider),
		zap.String("model", rt.Model),
		zap.String("code", string(perr.Code)),
		zap.String("classification", string(perr.Classification)),
		zap.Bool("retryable", perr.Retryable),
		zap.Int("status", perr.Details.Status),
		zap.Int("attempts", perr.Details.AttemptsUsed),
		zap.Error(perr))
	return perr
}

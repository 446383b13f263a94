package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/laptopkerja/contentgen/internal/telemetry"
	"github.com/laptopkerja/contentgen/internal/tlsutil"
	"github.com/laptopkerja/contentgen/types"
)

// maxResponseBytes caps how much of a provider body is read.
const maxResponseBytes = 16 << 20

// AttemptObserver is notified once per HTTP attempt. result is "success" or
// the failure classification.
type AttemptObserver interface {
	ObserveAttempt(provider, stage, result string)
}

// RequestSpec describes one logical provider request.
type RequestSpec struct {
	Provider string
	Model    string
	Stage    string
	// Build is called once per attempt so every attempt gets a fresh body
	// bound to the attempt context.
	Build  func(ctx context.Context) (*http.Request, error)
	Config types.RequestConfig
}

// Response is a successful (2xx) provider response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	// Attempt is the 1-based attempt that succeeded.
	Attempt int
}

// Transport executes provider requests with a per-attempt timeout and a
// bounded, linearly backed-off retry loop. It holds no per-request state
// and is safe for concurrent use.
type Transport struct {
	client   *http.Client
	logger   *zap.Logger
	tracer   trace.Tracer
	observer AttemptObserver
	sleep    func(ctx context.Context, d time.Duration) error
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithHTTPClient replaces the default provider client.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *Transport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) TransportOption {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithTracer sets the tracer used for attempt spans.
func WithTracer(tr trace.Tracer) TransportOption {
	return func(t *Transport) {
		if tr != nil {
			t.tracer = tr
		}
	}
}

// WithAttemptObserver registers an attempt observer.
func WithAttemptObserver(o AttemptObserver) TransportOption {
	return func(t *Transport) { t.observer = o }
}

// WithSleep replaces the backoff sleep, for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) TransportOption {
	return func(t *Transport) {
		if fn != nil {
			t.sleep = fn
		}
	}
}

// NewTransport creates a Transport.
func NewTransport(opts ...TransportOption) *Transport {
	t := &Transport{
		client: tlsutil.ProviderClient(),
		logger: zap.NewNop(),
		tracer: telemetry.Tracer(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With(zap.String("component", "transport"))
	return t
}

// RequestJSON performs spec with at most Config.RetryCount+1 attempts.
// Only retryable failures are retried; the wait before attempt n+1 is
// RetryBackoffMs*n. The returned error is always a *types.ProviderError
// carrying provider, model, stage and the attempts used.
func (t *Transport) RequestJSON(ctx context.Context, spec RequestSpec) (*Response, error) {
	maxAttempts := spec.Config.RetryCount + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		resp, perr := t.attempt(ctx, spec, attempt)
		if perr == nil {
			resp.Attempt = attempt
			return resp, nil
		}

		perr.WithSource(spec.Provider, spec.Model, spec.Stage)
		perr.Details.AttemptsUsed = attempt

		if !perr.Retryable || attempt >= maxAttempts || ctx.Err() != nil {
			return nil, perr
		}

		delay := time.Duration(spec.Config.RetryBackoffMs*attempt) * time.Millisecond
		t.logger.Warn("provider attempt failed, retrying",
			zap.String("provider", spec.Provider),
			zap.String("model", spec.Model),
			zap.String("stage", spec.Stage),
			zap.Int("attempt", attempt),
			zap.String("classification", string(perr.Classification)),
			zap.Int("status", perr.Details.Status),
			zap.Duration("backoff", delay))

		if err := t.sleep(ctx, delay); err != nil {
			aborted := MapTransportError(err).WithSource(spec.Provider, spec.Model, spec.Stage)
			aborted.Details.AttemptsUsed = attempt
			return nil, aborted
		}
	}
}

func (t *Transport) attempt(ctx context.Context, spec RequestSpec, attempt int) (*Response, *types.ProviderError) {
	attemptCtx, cancel := withAttemptTimeout(ctx, spec.Config.TimeoutMs)
	defer cancel()

	attemptCtx, span := t.tracer.Start(attemptCtx, "provider.attempt",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider", spec.Provider),
			attribute.String("model", spec.Model),
			attribute.String("stage", spec.Stage),
			attribute.Int("attempt", attempt),
		))
	defer span.End()

	resp, perr := t.do(attemptCtx, spec)
	if perr != nil {
		span.SetStatus(codes.Error, perr.Message)
		span.SetAttributes(attribute.String("classification", string(perr.Classification)))
		if perr.Details.Status != 0 {
			span.SetAttributes(attribute.Int("http.status_code", perr.Details.Status))
		}
		t.observe(spec, string(perr.Classification))
		if !perr.Retryable {
			t.logger.Warn("provider attempt failed",
				zap.String("provider", spec.Provider),
				zap.String("model", spec.Model),
				zap.String("stage", spec.Stage),
				zap.Int("attempt", attempt),
				zap.String("classification", string(perr.Classification)),
				zap.Int("status", perr.Details.Status))
		}
		return nil, perr
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.Status))
	t.observe(spec, "success")
	return resp, nil
}

func (t *Transport) do(ctx context.Context, spec RequestSpec) (*Response, *types.ProviderError) {
	req, err := spec.Build(ctx)
	if err != nil {
		return nil, types.NewProviderError(types.ErrBadRequest, "failed to build request").WithCause(err)
	}

	httpResp, err := t.client.Do(req)
	if err != nil {
		return nil, MapTransportError(err)
	}
	defer SafeCloseBody(httpResp.Body)

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, MapTransportError(fmt.Errorf("failed to read response: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp.StatusCode, ReadErrorMessage(body))
	}

	return &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   body,
	}, nil
}

func (t *Transport) observe(spec RequestSpec, result string) {
	if t.observer != nil {
		t.observer.ObserveAttempt(spec.Provider, spec.Stage, result)
	}
}

// SafeCloseBody drains and closes a response body so the connection can be
// reused.
func SafeCloseBody(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4<<10))
	_ = body.Close()
}

// withAttemptTimeout bounds one attempt. A non-positive timeout only inherits
// the caller's deadline.
func withAttemptTimeout(ctx context.Context, timeoutMs int) (context.Context, context.CancelFunc) {
	if timeoutMs <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

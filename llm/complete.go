package llm

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/laptopkerja/contentgen/types"
)

// Completion is the textual reply of one logical generation call.
type Completion struct {
	Text         string
	AttemptsUsed int
	// StructuredMode reports whether the successful request used it.
	StructuredMode bool
	// StructuredFallback is set when structured mode was rejected and the
	// request was repeated without it.
	StructuredFallback bool
}

// Complete sends call through adapter and extracts the reply text. When the
// backend rejects structured mode as unsupported the call is repeated
// without it. The unstructured round only gets the retries the first round
// left over, so both rounds together stay within RetryCount+1 attempts
// except that the unstructured request is always tried once.
func (t *Transport) Complete(ctx context.Context, a Adapter, call Call, cfg types.RequestConfig) (*Completion, error) {
	call.Structured = call.Structured && a.SupportsStructured()

	out := &Completion{StructuredMode: call.Structured}
	resp, err := t.send(ctx, a, call, cfg)
	if err != nil && call.Structured && IsUnsupportedParameter(err) {
		pe, _ := types.AsProviderError(err)
		out.AttemptsUsed = pe.Details.AttemptsUsed
		t.logger.Info("structured mode rejected, retrying unstructured",
			zap.String("provider", a.Name()),
			zap.String("model", call.Model),
			zap.String("reason", pe.Message))

		call.Structured = false
		out.StructuredMode = false
		out.StructuredFallback = true
		rest := cfg
		rest.RetryCount = max(cfg.RetryCount-out.AttemptsUsed, 0)
		resp, err = t.send(ctx, a, call, rest)
	}
	if err != nil {
		pe := MapTransportError(err)
		pe.Details.AttemptsUsed += out.AttemptsUsed
		return nil, pe
	}
	out.AttemptsUsed += resp.Attempt

	text, err := a.ExtractContent(resp.Body)
	if err != nil {
		pe := types.NewProviderError(types.ErrUpstream, "provider returned a malformed body").
			WithCause(err).
			WithStatus(resp.Status).
			WithSource(a.Name(), call.Model, types.StageParse)
		pe.Details.AttemptsUsed = out.AttemptsUsed
		return nil, pe
	}
	text = strings.TrimSpace(text)
	if text == "" {
		pe := types.NewProviderError(types.ErrEmptyResponse, "provider returned no text content").
			WithStatus(resp.Status).
			WithSource(a.Name(), call.Model, types.StageParse)
		pe.Details.AttemptsUsed = out.AttemptsUsed
		return nil, pe
	}

	out.Text = text
	return out, nil
}

func (t *Transport) send(ctx context.Context, a Adapter, call Call, cfg types.RequestConfig) (*Response, error) {
	return t.RequestJSON(ctx, RequestSpec{
		Provider: a.Name(),
		Model:    call.Model,
		Stage:    types.StageRequest,
		Config:   cfg,
		Build: func(ctx context.Context) (*http.Request, error) {
			return a.BuildRequest(ctx, call)
		},
	})
}

// ListModels fetches and parses a provider's model listing.
func (t *Transport) ListModels(ctx context.Context, a Adapter, apiKey string, cfg types.RequestConfig) ([]ModelInfo, error) {
	lister, ok := a.(ModelLister)
	if !ok {
		return nil, types.NewProviderError(types.ErrNotImplemented, "provider has no model listing").
			WithSource(a.Name(), "", types.StageModels)
	}
	resp, err := t.RequestJSON(ctx, RequestSpec{
		Provider: a.Name(),
		Stage:    types.StageModels,
		Config:   cfg,
		Build: func(ctx context.Context) (*http.Request, error) {
			return lister.ModelsRequest(ctx, apiKey)
		},
	})
	if err != nil {
		return nil, err
	}
	models, err := lister.ParseModels(resp.Body)
	if err != nil {
		return nil, types.NewProviderError(types.ErrUpstream, "provider returned a malformed model list").
			WithCause(err).
			WithStatus(resp.Status).
			WithSource(a.Name(), "", types.StageModels)
	}
	return models, nil
}

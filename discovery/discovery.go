package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/laptopkerja/contentgen/llm"
	"github.com/laptopkerja/contentgen/types"
	"github.com/laptopkerja/contentgen/vision"
)

// Sources reported in DetectResult.
const (
	SourceRemote   = "remote"
	SourceFeatured = "featured"
)

// Model is one entry of a discovery result.
type Model struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	IsFree         bool   `json:"isFree"`
	ContextWindow  int    `json:"contextWindow,omitempty"`
	IsFeatured     bool   `json:"isFeatured"`
	SupportsVision bool   `json:"supportsVision"`
}

// DetectRequest selects a provider and, optionally, only its free models.
type DetectRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"-"`
	FreeOnly bool   `json:"freeOnly"`
}

// DetectResult lists the models found for a provider.
type DetectResult struct {
	Provider          string  `json:"provider"`
	Source            string  `json:"source"`
	Count             int     `json:"count"`
	FreeFilterApplied bool    `json:"freeFilterApplied"`
	Models            []Model `json:"models"`
}

// Observer is notified once per Detect call. outcome is "success" or the
// error classification.
type Observer interface {
	ObserveDiscovery(provider, source, outcome string)
}

// SettingsResolver yields the transport bounds for a provider.
type SettingsResolver interface {
	Resolve(provider string) types.RequestConfig
}

// Detector lists provider models. Concurrent identical calls share one
// upstream request; results are not cached.
type Detector struct {
	registry  *llm.Registry
	transport *llm.Transport
	settings  SettingsResolver
	observer  Observer
	logger    *zap.Logger
	group     singleflight.Group
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) Option {
	return func(d *Detector) { d.observer = o }
}

// NewDetector creates a Detector.
func NewDetector(registry *llm.Registry, transport *llm.Transport, settings SettingsResolver, opts ...Option) (*Detector, error) {
	if registry == nil || transport == nil || settings == nil {
		return nil, fmt.Errorf("discovery: registry, transport and settings are required")
	}
	d := &Detector{
		registry:  registry,
		transport: transport,
		settings:  settings,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(zap.String("component", "discovery"))
	return d, nil
}

// Detect lists the models of req.Provider. Without an API key, or for a
// provider without a listing endpoint, the static featured list is
// returned with source "featured".
func (d *Detector) Detect(ctx context.Context, req DetectRequest) (*DetectResult, error) {
	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	if provider == "" {
		return nil, types.NewValidationError("provider", "provider is required")
	}
	adapter, ok := d.registry.Lookup(provider)
	if !ok {
		err := types.NewProviderError(types.ErrNotImplemented,
			fmt.Sprintf("provider %q is not implemented", provider)).
			WithSource(provider, "", types.StageModels)
		d.observe(provider, SourceFeatured, string(err.Classification))
		return nil, err
	}

	apiKey := strings.TrimSpace(req.APIKey)
	_, lists := adapter.(llm.ModelLister)

	var (
		models []Model
		source string
	)
	if apiKey == "" || !lists {
		source = SourceFeatured
		models = featuredModels(provider)
	} else {
		source = SourceRemote
		// The key is part of the flight key so callers never share another
		// account's listing.
		// The flight is detached from the first caller so its cancellation
		// does not fail the others; per-attempt timeouts still bound it.
		flight := context.WithoutCancel(ctx)
		ch := d.group.DoChan(provider+"\x00"+apiKey, func() (any, error) {
			infos, err := d.transport.ListModels(flight, adapter, apiKey, d.settings.Resolve(provider))
			if err != nil {
				return nil, err
			}
			return tagModels(provider, infos), nil
		})
		var res singleflight.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			res.Err = llm.MapTransportError(ctx.Err()).WithSource(provider, "", types.StageModels)
		}
		if res.Err != nil {
			perr := llm.MapTransportError(res.Err)
			d.observe(provider, source, string(perr.Classification))
			d.logger.Warn("model discovery failed",
				zap.String("provider", provider),
				zap.String("code", string(perr.Code)),
				zap.Int("status", perr.Details.Status),
				zap.Error(perr))
			return nil, perr
		}
		// Shared results are copied before filtering.
		models = append([]Model(nil), res.Val.([]Model)...)
		if res.Shared {
			d.logger.Debug("model discovery shared an in-flight request", zap.String("provider", provider))
		}
	}

	if req.FreeOnly {
		models = filterFree(models)
	}
	sortModels(models)

	d.observe(provider, source, "success")
	d.logger.Info("model discovery completed",
		zap.String("provider", provider),
		zap.String("source", source),
		zap.Int("count", len(models)),
		zap.Bool("free_only", req.FreeOnly))

	return &DetectResult{
		Provider:          provider,
		Source:            source,
		Count:             len(models),
		FreeFilterApplied: req.FreeOnly,
		Models:            models,
	}, nil
}

func (d *Detector) observe(provider, source, outcome string) {
	if d.observer != nil {
		d.observer.ObserveDiscovery(provider, source, outcome)
	}
}

func tagModels(provider string, infos []llm.ModelInfo) []Model {
	out := make([]Model, 0, len(infos))
	seen := make(map[string]bool, len(infos))
	for _, info := range infos {
		id := strings.TrimSpace(info.ID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		label := strings.TrimSpace(info.Label)
		if label == "" {
			label = id
		}
		ref := vision.ModelRef{Provider: provider, Model: id, InputModalities: info.InputModalities}
		out = append(out, Model{
			ID:             id,
			Label:          label,
			IsFree:         IsFreeModel(provider, id, info.Pricing),
			ContextWindow:  info.ContextWindow,
			IsFeatured:     isFeatured(provider, id),
			SupportsVision: vision.IsVisionCapableModel(ref),
		})
	}
	return out
}

// IsFreeModel reports the cost tier of a model. OpenRouter models are free
// when both prices are zero or the id carries the ":free" suffix; Groq and
// Gemini are treated as free tier; every other provider is paid.
func IsFreeModel(provider, id string, pricing *llm.Pricing) bool {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openrouter":
		if strings.HasSuffix(strings.ToLower(id), ":free") {
			return true
		}
		return pricing != nil && pricing.Prompt == 0 && pricing.Completion == 0
	case "groq", "gemini":
		return true
	default:
		return false
	}
}

func filterFree(models []Model) []Model {
	out := make([]Model, 0, len(models))
	for _, m := range models {
		if m.IsFree {
			out = append(out, m)
		}
	}
	return out
}

// sortModels puts featured models first, then orders by id.
func sortModels(models []Model) {
	sort.SliceStable(models, func(i, j int) bool {
		if models[i].IsFeatured != models[j].IsFeatured {
			return models[i].IsFeatured
		}
		return models[i].ID < models[j].ID
	})
}

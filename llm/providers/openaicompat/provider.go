// =============================================================================
// OpenAI-compatible chat completions adapter
// =============================================================================
// One implementation serves every provider speaking the chat completions
// wire format. Presets differ only in name, base URL, default model,
// headers and capability flags.
// =============================================================================

package openaicompat

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/laptopkerja/contentgen/llm"
)

// Config describes one OpenAI-compatible provider.
type Config struct {
	// ProviderName is the registry id, e.g. "openai" or "groq".
	ProviderName string

	// BaseURL is the API root without the endpoint path.
	BaseURL string

	// DefaultModel is used when a request names no model.
	DefaultModel string

	// EndpointPath defaults to "/v1/chat/completions".
	EndpointPath string

	// ModelsEndpoint defaults to "/v1/models".
	ModelsEndpoint string

	// BuildHeaders sets extra headers after the bearer token.
	BuildHeaders func(req *http.Request)

	// Vision enables image_url content parts.
	Vision bool

	// Structured enables response_format json_object.
	Structured bool
}

// Adapter implements llm.Adapter and llm.ModelLister.
type Adapter struct {
	cfg Config
}

var (
	_ llm.Adapter     = (*Adapter)(nil)
	_ llm.ModelLister = (*Adapter)(nil)
)

// New creates an adapter, filling endpoint defaults.
func New(cfg Config) *Adapter {
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/v1/chat/completions"
	}
	if cfg.ModelsEndpoint == "" {
		cfg.ModelsEndpoint = "/v1/models"
	}
	return &Adapter{cfg: cfg}
}

func (a *Adapter) Name() string             { return a.cfg.ProviderName }
func (a *Adapter) DefaultModel() string     { return a.cfg.DefaultModel }
func (a *Adapter) SupportsVision() bool     { return a.cfg.Vision }
func (a *Adapter) SupportsStructured() bool { return a.cfg.Structured }

// =============================================================================
// wire types
// =============================================================================

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// BuildRequest renders call as a chat completions request. Images become
// image_url parts after the user text; structured mode is injected only
// when requested so an unstructured rebuild carries no trace of it.
func (a *Adapter) BuildRequest(ctx context.Context, call llm.Call) (*http.Request, error) {
	user := chatMessage{Role: "user", Content: call.UserPrompt}
	if len(call.Images) > 0 && a.cfg.Vision {
		parts := make([]contentPart, 0, len(call.Images)+1)
		parts = append(parts, contentPart{Type: "text", Text: call.UserPrompt})
		for _, img := range call.Images {
			parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: img.DataURL()}})
		}
		user.Content = parts
	}

	messages := make([]chatMessage, 0, 2)
	if call.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: call.SystemPrompt})
	}
	messages = append(messages, user)

	body, err := llm.MarshalBody(chatRequest{Model: call.Model, Messages: messages})
	if err != nil {
		return nil, err
	}
	if call.Structured && a.cfg.Structured {
		body, err = sjson.SetBytes(body, "response_format.type", "json_object")
		if err != nil {
			return nil, fmt.Errorf("failed to set response_format: %w", err)
		}
	}

	req, err := llm.NewJSONRequest(ctx, llm.JoinURL(a.cfg.BaseURL, a.cfg.EndpointPath), body)
	if err != nil {
		return nil, err
	}
	a.headers(req, call.APIKey)
	return req, nil
}

func (a *Adapter) headers(req *http.Request, apiKey string) {
	llm.BearerTokenHeaders(req, apiKey)
	if a.cfg.BuildHeaders != nil {
		a.cfg.BuildHeaders(req)
	}
}

// ExtractContent reads choices[0].message.content as a string or as an
// array of parts, then the legacy choices[0].text.
func (a *Adapter) ExtractContent(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%s: response is not JSON", a.cfg.ProviderName)
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	switch {
	case content.Type == gjson.String:
		return content.Str, nil
	case content.IsArray():
		var sb strings.Builder
		content.ForEach(func(_, part gjson.Result) bool {
			switch {
			case part.Type == gjson.String:
				sb.WriteString(part.Str)
			case part.Get("type").String() == "text" || part.Get("text").Exists():
				sb.WriteString(part.Get("text").String())
			}
			return true
		})
		return sb.String(), nil
	}

	return gjson.GetBytes(body, "choices.0.text").String(), nil
}

// ModelsRequest builds the model listing request.
func (a *Adapter) ModelsRequest(ctx context.Context, apiKey string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, llm.JoinURL(a.cfg.BaseURL, a.cfg.ModelsEndpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create models request: %w", err)
	}
	a.headers(req, apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// ParseModels reads the data array of a /v1/models response. OpenRouter
// extras (name, context_length, architecture.input_modalities, pricing) are
// picked up when present.
func (a *Adapter) ParseModels(body []byte) ([]llm.ModelInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: models response is not JSON", a.cfg.ProviderName)
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return nil, fmt.Errorf("%s: models response has no data array", a.cfg.ProviderName)
	}

	var models []llm.ModelInfo
	data.ForEach(func(_, m gjson.Result) bool {
		id := strings.TrimSpace(m.Get("id").String())
		if id == "" {
			return true
		}
		info := llm.ModelInfo{
			ID:            id,
			Label:         m.Get("name").String(),
			ContextWindow: int(firstInt(m, "context_length", "context_window", "top_provider.context_length")),
		}
		if info.Label == "" {
			info.Label = id
		}
		m.Get("architecture.input_modalities").ForEach(func(_, v gjson.Result) bool {
			info.InputModalities = append(info.InputModalities, v.String())
			return true
		})
		if p := m.Get("pricing"); p.IsObject() {
			info.Pricing = &llm.Pricing{
				Prompt:     p.Get("prompt").Float(),
				Completion: p.Get("completion").Float(),
			}
		}
		models = append(models, info)
		return true
	})
	return models, nil
}

func firstInt(m gjson.Result, paths ...string) int64 {
	for _, p := range paths {
		if v := m.Get(p); v.Exists() && v.Int() > 0 {
			return v.Int()
		}
	}
	return 0
}

// =============================================================================
// presets
// =============================================================================

// OpenAI returns the api.openai.com preset.
func OpenAI() Config {
	return Config{
		ProviderName: "openai",
		BaseURL:      "https://api.openai.com",
		DefaultModel: "gpt-4o-mini",
		Vision:       true,
		Structured:   true,
	}
}

// OpenRouter returns the openrouter.ai preset. appURL and appTitle are sent
// as HTTP-Referer and X-Title attribution headers when set.
func OpenRouter(appURL, appTitle string) Config {
	return Config{
		ProviderName: "openrouter",
		BaseURL:      "https://openrouter.ai/api",
		DefaultModel: "openai/gpt-4o-mini",
		Vision:       true,
		Structured:   true,
		BuildHeaders: func(req *http.Request) {
			if appURL != "" {
				req.Header.Set("HTTP-Referer", appURL)
			}
			if appTitle != "" {
				req.Header.Set("X-Title", appTitle)
			}
		},
	}
}

// Groq returns the api.groq.com preset.
func Groq() Config {
	return Config{
		ProviderName: "groq",
		BaseURL:      "https://api.groq.com/openai",
		DefaultModel: "llama-3.3-70b-versatile",
		Vision:       true,
		Structured:   true,
	}
}

// DeepSeek returns the api.deepseek.com preset. It has no image input.
func DeepSeek() Config {
	return Config{
		ProviderName: "deepseek",
		BaseURL:      "https://api.deepseek.com",
		DefaultModel: "deepseek-chat",
		Structured:   true,
	}
}

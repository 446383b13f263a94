package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/laptopkerja/contentgen/llm"
	"github.com/laptopkerja/contentgen/types"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-haiku-latest"
	APIVersion       = "2023-06-01"
	defaultMaxTokens = 4096
)

// Config configures the Messages API adapter.
type Config struct {
	BaseURL      string
	DefaultModel string
	MaxTokens    int
}

// Adapter implements llm.Adapter and llm.ModelLister for the Messages API.
// Structured mode has no equivalent here and is never requested.
type Adapter struct {
	cfg Config
}

var (
	_ llm.Adapter     = (*Adapter)(nil)
	_ llm.ModelLister = (*Adapter)(nil)
)

// New creates an Anthropic adapter.
func New(cfg Config) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return &Adapter{cfg: cfg}
}

func (a *Adapter) Name() string             { return "anthropic" }
func (a *Adapter) DefaultModel() string     { return a.cfg.DefaultModel }
func (a *Adapter) SupportsVision() bool     { return true }
func (a *Adapter) SupportsStructured() bool { return false }

type claudeMessage struct {
	Role    string          `json:"role"`
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	Messages  []claudeMessage `json:"messages"`
	System    string          `json:"system,omitempty"`
	MaxTokens int             `json:"max_tokens"`
}

// BuildRequest renders call as a Messages API request. Images precede the
// text block, which is the order the API recommends.
func (a *Adapter) BuildRequest(ctx context.Context, call llm.Call) (*http.Request, error) {
	content := make([]claudeContent, 0, len(call.Images)+1)
	for _, img := range call.Images {
		src := &imageSource{Type: "url", URL: img.URL}
		if img.Kind == types.ImageKindDataURL {
			src = &imageSource{Type: "base64", MediaType: img.MimeType, Data: img.Data}
		}
		content = append(content, claudeContent{Type: "image", Source: src})
	}
	content = append(content, claudeContent{Type: "text", Text: call.UserPrompt})

	body, err := llm.MarshalBody(claudeRequest{
		Model:     call.Model,
		Messages:  []claudeMessage{{Role: "user", Content: content}},
		System:    call.SystemPrompt,
		MaxTokens: a.cfg.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	req, err := llm.NewJSONRequest(ctx, llm.JoinURL(a.cfg.BaseURL, "/v1/messages"), body)
	if err != nil {
		return nil, err
	}
	a.headers(req, call.APIKey)
	return req, nil
}

func (a *Adapter) headers(req *http.Request, apiKey string) {
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", APIVersion)
}

// ExtractContent joins every text block of the reply.
func (a *Adapter) ExtractContent(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("anthropic: response is not JSON")
	}
	var parts []string
	for _, block := range gjson.GetBytes(body, "content").Array() {
		if block.Get("type").String() == "text" {
			parts = append(parts, block.Get("text").String())
		}
	}
	return strings.Join(parts, ""), nil
}

// ModelsRequest lists available models.
func (a *Adapter) ModelsRequest(ctx context.Context, apiKey string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, llm.JoinURL(a.cfg.BaseURL, "/v1/models?limit=1000"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create models request: %w", err)
	}
	a.headers(req, apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// ParseModels reads the data array of the models response.
func (a *Adapter) ParseModels(body []byte) ([]llm.ModelInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("anthropic: models response is not JSON")
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return nil, fmt.Errorf("anthropic: models response has no data array")
	}
	var models []llm.ModelInfo
	for _, m := range data.Array() {
		id := m.Get("id").String()
		if id == "" {
			continue
		}
		label := m.Get("display_name").String()
		if label == "" {
			label = id
		}
		models = append(models, llm.ModelInfo{ID: id, Label: label})
	}
	return models, nil
}

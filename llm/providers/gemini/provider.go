package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/laptopkerja/contentgen/llm"
	"github.com/laptopkerja/contentgen/types"
)

const (
	// DefaultBaseURL is the Generative Language API root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is used when a request names no model.
	DefaultModel = "gemini-2.0-flash"
)

// Config configures the Gemini adapter.
type Config struct {
	BaseURL      string
	DefaultModel string
	// APIVersion defaults to v1beta.
	APIVersion string
}

// Adapter implements llm.Adapter and llm.ModelLister for the
// generateContent API.
type Adapter struct {
	cfg Config
}

var (
	_ llm.Adapter     = (*Adapter)(nil)
	_ llm.ModelLister = (*Adapter)(nil)
)

// New creates a Gemini adapter.
func New(cfg Config) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v1beta"
	}
	return &Adapter{cfg: cfg}
}

func (a *Adapter) Name() string             { return "gemini" }
func (a *Adapter) DefaultModel() string     { return a.cfg.DefaultModel }
func (a *Adapter) SupportsVision() bool     { return true }
func (a *Adapter) SupportsStructured() bool { return true }

// =============================================================================
// wire types
// =============================================================================

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
	FileData   *geminiFileData   `json:"fileData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiFileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

// BuildRequest renders call as a generateContent request. Inline images
// become inlineData parts and remote images fileData parts.
func (a *Adapter) BuildRequest(ctx context.Context, call llm.Call) (*http.Request, error) {
	parts := []geminiPart{{Text: call.UserPrompt}}
	for _, img := range call.Images {
		if img.Kind == types.ImageKindDataURL {
			parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: img.MimeType, Data: img.Data}})
			continue
		}
		parts = append(parts, geminiPart{FileData: &geminiFileData{MimeType: mimeFromURL(img.URL), FileURI: img.URL}})
	}

	reqBody := geminiRequest{Contents: []geminiContent{{Role: "user", Parts: parts}}}
	if call.SystemPrompt != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: call.SystemPrompt}}}
	}

	body, err := llm.MarshalBody(reqBody)
	if err != nil {
		return nil, err
	}
	if call.Structured {
		body, err = sjson.SetBytes(body, "generationConfig.responseMimeType", "application/json")
		if err != nil {
			return nil, fmt.Errorf("failed to set responseMimeType: %w", err)
		}
	}

	endpoint := llm.JoinURL(a.cfg.BaseURL,
		fmt.Sprintf("/%s/models/%s:generateContent", a.cfg.APIVersion, url.PathEscape(trimModelPrefix(call.Model))))
	req, err := llm.NewJSONRequest(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", call.APIKey)
	return req, nil
}

// ExtractContent joins the text parts of the first candidate.
func (a *Adapter) ExtractContent(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("gemini: response is not JSON")
	}
	var sb strings.Builder
	for _, part := range gjson.GetBytes(body, "candidates.0.content.parts").Array() {
		if part.Get("thought").Bool() {
			continue
		}
		sb.WriteString(part.Get("text").String())
	}
	return sb.String(), nil
}

// ModelsRequest lists models able to generateContent.
func (a *Adapter) ModelsRequest(ctx context.Context, apiKey string) (*http.Request, error) {
	endpoint := llm.JoinURL(a.cfg.BaseURL, fmt.Sprintf("/%s/models?pageSize=1000", a.cfg.APIVersion))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create models request: %w", err)
	}
	req.Header.Set("x-goog-api-key", apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// ParseModels reads the models array, keeping generateContent models only.
func (a *Adapter) ParseModels(body []byte) ([]llm.ModelInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("gemini: models response is not JSON")
	}
	list := gjson.GetBytes(body, "models")
	if !list.IsArray() {
		return nil, fmt.Errorf("gemini: models response has no models array")
	}

	var models []llm.ModelInfo
	for _, m := range list.Array() {
		if methods := m.Get("supportedGenerationMethods"); methods.Exists() && !contains(methods, "generateContent") {
			continue
		}
		id := trimModelPrefix(m.Get("name").String())
		if id == "" {
			continue
		}
		label := m.Get("displayName").String()
		if label == "" {
			label = id
		}
		models = append(models, llm.ModelInfo{
			ID:            id,
			Label:         label,
			ContextWindow: int(m.Get("inputTokenLimit").Int()),
		})
	}
	return models, nil
}

func contains(arr gjson.Result, want string) bool {
	for _, v := range arr.Array() {
		if v.String() == want {
			return true
		}
	}
	return false
}

func trimModelPrefix(model string) string {
	return strings.TrimPrefix(strings.TrimSpace(model), "models/")
}

func mimeFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "image/jpeg"
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

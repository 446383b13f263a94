package types

import "strings"

// ImageKind tags the variant of an ImageReference.
type ImageKind string

const (
	ImageKindURL     ImageKind = "url"
	ImageKindDataURL ImageKind = "data_url"
)

// ImageReference is either a remote URL or inline base64 data with a MIME
// type. Values are treated as immutable once validated.
type ImageReference struct {
	Kind     ImageKind `json:"kind"`
	URL      string    `json:"url,omitempty"`
	Data     string    `json:"data,omitempty"`
	MimeType string    `json:"mime_type,omitempty"`
}

// URLImage returns a remote image reference.
func URLImage(url string) ImageReference {
	return ImageReference{Kind: ImageKindURL, URL: url}
}

// DataImage returns an inline image reference. data is raw base64.
func DataImage(data, mimeType string) ImageReference {
	return ImageReference{Kind: ImageKindDataURL, Data: data, MimeType: mimeType}
}

// DataURL renders an inline reference as a data: URL.
func (r ImageReference) DataURL() string {
	if r.Kind != ImageKindDataURL {
		return r.URL
	}
	return "data:" + r.MimeType + ";base64," + r.Data
}

// RequestConfig holds the per-provider transport bounds resolved for one
// request.
type RequestConfig struct {
	TimeoutMs      int `json:"timeoutMs" yaml:"timeout_ms"`
	RetryCount     int `json:"retryCount" yaml:"retry_count"`
	RetryBackoffMs int `json:"retryBackoffMs" yaml:"retry_backoff_ms"`
}

// Content is the canonical generated content shape. Parsed model output and
// caller fallbacks share it; after normalization every applicable field is
// populated.
type Content struct {
	Title               string   `json:"title"`
	Hook                string   `json:"hook"`
	Narrator            string   `json:"narrator"`
	Description         string   `json:"description"`
	Hashtags            []string `json:"hashtags"`
	AudioRecommendation string   `json:"audioRecommendation"`
	Slug                string   `json:"slug,omitempty"`
	InternalLinks       []string `json:"internalLinks,omitempty"`
	ExternalReferences  []string `json:"externalReferences,omitempty"`
	FeaturedSnippet     string   `json:"featuredSnippet,omitempty"`
}

// NormalizedContent is Content after platform rules were applied.
type NormalizedContent = Content

// GenerationRequest is one logical generation call.
type GenerationRequest struct {
	Provider        string           `json:"provider"`
	Model           string           `json:"model,omitempty"`
	APIKey          string           `json:"-"`
	Prompt          string           `json:"prompt"`
	Platform        string           `json:"platform"`
	Topic           string           `json:"topic,omitempty"`
	Language        string           `json:"language,omitempty"`
	ImageReferences []ImageReference `json:"imageReferences,omitempty"`
	Fallback        Content          `json:"fallback"`
}

// HasProvider reports whether a backend was selected.
func (r GenerationRequest) HasProvider() bool {
	return strings.TrimSpace(r.Provider) != ""
}

// Runtime carries the diagnostics of one orchestrator call.
type Runtime struct {
	RequestID          string   `json:"requestId"`
	Provider           string   `json:"provider"`
	Model              string   `json:"model"`
	ElapsedMs          int64    `json:"elapsedMs"`
	AttemptsUsed       int      `json:"attemptsUsed"`
	StructuredMode     bool     `json:"structuredMode"`
	StructuredFallback bool     `json:"structuredFallback"`
	TimeoutMs          int      `json:"timeoutMs"`
	RetryCount         int      `json:"retryCount"`
	RetryBackoffMs     int      `json:"retryBackoffMs"`
	VisionMode         string   `json:"visionMode"`
	ParsePath          string   `json:"parsePath,omitempty"`
	Warnings           []string `json:"warnings,omitempty"`
}

// GenerationResult is normalized content plus the raw reply and runtime.
type GenerationResult struct {
	NormalizedContent
	RawText string  `json:"rawText"`
	Runtime Runtime `json:"_providerRuntime"`
}

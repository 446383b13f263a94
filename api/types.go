package api

import (
	"strings"

	"github.com/laptopkerja/contentgen/types"
)

// ProviderKeyHeader carries the caller's backend API key. Keys are never
// accepted in the body or query string.
const ProviderKeyHeader = "X-Provider-Key"

// GenerateRequest is the body of POST /v1/generate.
type GenerateRequest struct {
	Provider        string                 `json:"provider"`
	Model           string                 `json:"model,omitempty"`
	Prompt          string                 `json:"prompt"`
	Platform        string                 `json:"platform"`
	Topic           string                 `json:"topic,omitempty"`
	Language        string                 `json:"language,omitempty"`
	ImageReferences []types.ImageReference `json:"imageReferences,omitempty"`
	Fallback        types.Content          `json:"fallback"`
}

// ToGenerationRequest attaches the API key taken from the header.
func (r GenerateRequest) ToGenerationRequest(apiKey string) types.GenerationRequest {
	return types.GenerationRequest{
		Provider:        r.Provider,
		Model:           r.Model,
		APIKey:          strings.TrimSpace(apiKey),
		Prompt:          r.Prompt,
		Platform:        r.Platform,
		Topic:           r.Topic,
		Language:        r.Language,
		ImageReferences: r.ImageReferences,
		Fallback:        r.Fallback,
	}
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/laptopkerja/contentgen/types"
)

// Call is the backend-neutral description of one generation request.
type Call struct {
	APIKey       string
	Model        string
	SystemPrompt string
	UserPrompt   string
	// Images are sent only in multimodal mode.
	Images []types.ImageReference
	// Structured asks the backend to constrain output to JSON.
	Structured bool
}

// Adapter translates a Call into one provider family's HTTP request and
// pulls the textual content back out of its response.
type Adapter interface {
	Name() string
	DefaultModel() string
	SupportsVision() bool
	SupportsStructured() bool
	BuildRequest(ctx context.Context, call Call) (*http.Request, error)
	// ExtractContent returns the reply text. A body that is not JSON is an
	// error; an empty string is returned as-is and classified by the caller.
	ExtractContent(body []byte) (string, error)
}

// Pricing is the per-token price reported by a model listing.
type Pricing struct {
	Prompt     float64
	Completion float64
}

// ModelInfo is one entry of a provider's model listing.
type ModelInfo struct {
	ID              string
	Label           string
	ContextWindow   int
	InputModalities []string
	// Pricing is nil when the listing carries no price.
	Pricing *Pricing
}

// ModelLister is implemented by adapters whose provider exposes a model
// listing endpoint.
type ModelLister interface {
	ModelsRequest(ctx context.Context, apiKey string) (*http.Request, error)
	ParseModels(body []byte) ([]ModelInfo, error)
}

// =============================================================================
// request helpers shared by the provider families
// =============================================================================

// JoinURL joins a base URL and a path with exactly one slash.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// BearerTokenHeaders sets the standard bearer auth and JSON content type.
func BearerTokenHeaders(r *http.Request, apiKey string) {
	r.Header.Set("Authorization", "Bearer "+apiKey)
	r.Header.Set("Content-Type", "application/json")
}

// NewJSONRequest builds a POST request carrying body, already encoded.
func NewJSONRequest(ctx context.Context, endpoint string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// MarshalBody encodes a request payload without HTML escaping so prompts
// containing <, > and & stay readable on the wire.
func MarshalBody(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

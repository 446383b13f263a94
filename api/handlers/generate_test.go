package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/laptopkerja/contentgen/api"
	"github.com/laptopkerja/contentgen/types"
)

type stubGenerator struct {
	got    types.GenerationRequest
	result *types.GenerationResult
	err    error
}

func (s *stubGenerator) Generate(_ context.Context, req types.GenerationRequest) (*types.GenerationResult, error) {
	s.got = req
	return s.result, s.err
}

func postGenerate(h *GenerateHandler, body, key string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if key != "" {
		r.Header.Set(api.ProviderKeyHeader, key)
	}
	w := httptest.NewRecorder()
	h.HandleGenerate(w, r)
	return w
}

func TestGenerateHandler_Success(t *testing.T) {
	gen := &stubGenerator{result: &types.GenerationResult{
		NormalizedContent: types.Content{Title: "T", Hashtags: []string{"#a"}},
		RawText:           `{"title":"T"}`,
		Runtime:           types.Runtime{RequestID: "req-9", Provider: "openai", AttemptsUsed: 1},
	}}
	h := NewGenerateHandler(gen, 1<<20, zap.NewNop())

	w := postGenerate(h, `{"provider":"openai","prompt":"p","platform":"TikTok",
		"imageReferences":[{"kind":"url","url":"https://x.test/a.png"}],
		"fallback":{"title":"F"}}`, " sk-123 ")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sk-123", gen.got.APIKey)
	assert.Equal(t, "openai", gen.got.Provider)
	assert.Equal(t, "TikTok", gen.got.Platform)
	assert.Equal(t, "F", gen.got.Fallback.Title)
	require.Len(t, gen.got.ImageReferences, 1)

	var resp struct {
		Success   bool            `json:"success"`
		RequestID string          `json:"request_id"`
		Data      json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "req-9", resp.RequestID)

	var data map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "T", data["title"])
	assert.Equal(t, `{"title":"T"}`, data["rawText"])
	runtime := data["_providerRuntime"].(map[string]any)
	assert.Equal(t, "openai", runtime["provider"])
	assert.NotContains(t, string(resp.Data), "sk-123")
}

func TestGenerateHandler_PipelineError(t *testing.T) {
	gen := &stubGenerator{err: types.NewProviderError(types.ErrRateLimit, "slow down").
		WithStatus(429).WithSource("groq", "m", types.StageRequest)}
	h := NewGenerateHandler(gen, 0, nil)

	w := postGenerate(h, `{"provider":"groq","platform":"TikTok"}`, "k")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RATE_LIMIT", resp.Error.Code)
	assert.Equal(t, "rate_limit", resp.Error.Classification)
	assert.True(t, resp.Error.Retryable)
	assert.Equal(t, "groq", resp.Error.Details.Provider)
}

func TestGenerateHandler_RejectsBadRequests(t *testing.T) {
	h := NewGenerateHandler(&stubGenerator{}, 256, nil)

	t.Run("method", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleGenerate(w, httptest.NewRequest(http.MethodGet, "/v1/generate", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("content type", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{}`))
		r.Header.Set("Content-Type", "text/plain")
		w := httptest.NewRecorder()
		h.HandleGenerate(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("api key in body is unknown", func(t *testing.T) {
		w := postGenerate(h, `{"provider":"openai","apiKey":"sk"}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("body too large", func(t *testing.T) {
		w := postGenerate(h, `{"prompt":"`+strings.Repeat("x", 300)+`"}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

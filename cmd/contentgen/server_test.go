package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/laptopkerja/contentgen/config"
	"github.com/laptopkerja/contentgen/internal/metrics"
	"github.com/laptopkerja/contentgen/testutil"
)

func newTestServer(t *testing.T, upstream http.HandlerFunc, withMetrics bool) http.Handler {
	t.Helper()
	backend := httptest.NewServer(upstream)
	t.Cleanup(backend.Close)

	cfg := config.DefaultConfig()
	cfg.Generation.Providers = map[string]config.ProviderConfig{
		"openai": {BaseURL: backend.URL},
	}
	cfg.Metrics.Enabled = withMetrics
	cfg.Metrics.Namespace = "contentgen_cmd_test"
	store := config.NewStore(cfg)

	s := NewServer(store, config.NewLoader(), "", zap.NewNop(), nil)
	if withMetrics {
		s.collector = metrics.NewCollector(cfg.Metrics.Namespace, zap.NewNop())
	}
	p, err := buildPipeline(store, zap.NewNop(), s.collector)
	require.NoError(t, err)
	s.pipeline = p
	return s.Handler()
}

func chatReply(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testutil.ChatCompletion(content)))
	}
}

func TestServer_Generate(t *testing.T) {
	h := newTestServer(t, chatReply(`{"title":"Kopi Susu","hook":"Rahasia kopi susu kekinian"}`), true)

	body := `{"provider":"openai","platform":"Blog WordPress","topic":"kopi susu","prompt":"tulis artikel"}`
	r := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-Provider-Key", "sk-test")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Kopi Susu", resp.Data["title"])
	assert.Equal(t, "kopi-susu", resp.Data["slug"])

	mw := httptest.NewRecorder()
	h.ServeHTTP(mw, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, mw.Code)
	text, _ := io.ReadAll(mw.Body)
	assert.Contains(t, string(text), "contentgen_cmd_test_generation_requests_total")
	assert.Contains(t, string(text), "contentgen_cmd_test_provider_attempts_total")
}

func TestServer_GenerateUpstreamFailure(t *testing.T) {
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}, false)

	r := httptest.NewRequest(http.MethodPost, "/v1/generate",
		bytes.NewBufferString(`{"provider":"openai","platform":"TikTok"}`))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-Provider-Key", "sk-bad")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `"AUTH_ERROR"`)
	assert.NotContains(t, w.Body.String(), "sk-bad")
}

func TestServer_ModelsAndHealth(t *testing.T) {
	h := newTestServer(t, chatReply("{}"), false)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/models?provider=gemini", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"featured"`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"providers"`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunGenerate_Offline(t *testing.T) {
	t.Setenv(providerKeyEnv, "")
	var out bytes.Buffer
	err := runGenerate([]string{"--platform", "TikTok", "--fallback-title", "Judul cadangan"}, &out)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "Judul cadangan", result["title"])
	runtime := result["_providerRuntime"].(map[string]any)
	assert.EqualValues(t, 0, runtime["attemptsUsed"])
}

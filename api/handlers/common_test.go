package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/laptopkerja/contentgen/types"
)

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, map[string]string{"message": "hello"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.JSONEq(t, `{"message":"hello"}`, w.Body.String())
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"key": "value"}, "req-1")

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestWriteError_StatusFollowsClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"timeout", types.NewProviderError(types.ErrTimeout, "slow"), http.StatusGatewayTimeout, "TIMEOUT"},
		{"rate limit", types.NewProviderError(types.ErrRateLimit, "busy"), http.StatusTooManyRequests, "RATE_LIMIT"},
		{"validation", types.NewValidationError("platform", "bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"auth", types.NewProviderError(types.ErrAuth, "denied"), http.StatusBadGateway, "AUTH_ERROR"},
		{"invalid json", types.NewProviderError(types.ErrInvalidJSON, "junk"), http.StatusBadGateway, "INVALID_JSON"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err, zap.NewNop())

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestWriteError_CarriesDetails(t *testing.T) {
	perr := types.NewProviderError(types.ErrUpstream, "overloaded").
		WithStatus(503).
		WithSource("openai", "gpt-4o-mini", types.StageRequest).
		WithRuntime(1234, 2, types.RequestConfig{TimeoutMs: 45000, RetryCount: 1, RetryBackoffMs: 700})

	w := httptest.NewRecorder()
	WriteError(w, perr, nil)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "UPSTREAM_ERROR", errBody["code"])
	assert.Equal(t, "upstream", errBody["classification"])
	assert.Equal(t, true, errBody["retryable"])
	details := errBody["details"].(map[string]any)
	assert.Equal(t, "openai", details["provider"])
	assert.EqualValues(t, 503, details["status"])
	assert.EqualValues(t, 2, details["attemptsUsed"])
	assert.EqualValues(t, 45000, details["timeoutMs"])
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		max     int64
		wantErr bool
	}{
		{"valid", `{"name":"x"}`, 0, false},
		{"unknown field", `{"name":"x","extra":1}`, 0, true},
		{"malformed", `{"name":`, 0, true},
		{"trailing object", `{"name":"x"}{"name":"y"}`, 0, true},
		{"too large", `{"name":"xxxxxxxxxxxxxxxx"}`, 10, true},
		{"within limit", `{"name":"x"}`, 64, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := DecodeJSONBody(r, &dst, tt.max)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "x", dst.Name)
				return
			}
			require.Error(t, err)
			pe, ok := types.AsProviderError(err)
			require.True(t, ok)
			assert.Equal(t, "body", pe.Details.Field)
		})
	}

	t.Run("empty", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		assert.Error(t, DecodeJSONBody(r, &payload{}, 0))
	})
}

func TestValidateContentType(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("Content-Type", "application/json")
	assert.NoError(t, ValidateContentType(r))

	r.Header.Set("Content-Type", "text/plain")
	assert.Equal(t, types.ErrValidation, types.CodeOf(ValidateContentType(r)))
}

func TestRequireMethod(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, RequireMethod(w, r, http.MethodPost))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))

	assert.True(t, RequireMethod(httptest.NewRecorder(), r, http.MethodGet))
}

func TestResponseWriter_CapturesFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)
	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusOK)
	assert.Equal(t, http.StatusTeapot, rw.StatusCode)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rw2 := NewResponseWriter(httptest.NewRecorder())
	_, _ = rw2.Write([]byte("x"))
	assert.Equal(t, http.StatusOK, rw2.StatusCode)
	assert.True(t, rw2.Written)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler(zap.NewNop())
	for path, fn := range map[string]http.HandlerFunc{"/health": h.HandleHealth, "/healthz": h.HandleHealthz} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			fn(w, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			var status HealthStatus
			require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
			assert.Equal(t, "healthy", status.Status)
		})
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		h := NewHealthHandler(nil)
		h.RegisterCheck(NewProvidersCheck(func() int { return 6 }))

		w := httptest.NewRecorder()
		h.HandleReady(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var status HealthStatus
		require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
		assert.Equal(t, "pass", status.Checks["providers"].Status)
	})

	t.Run("failing check answers 503", func(t *testing.T) {
		h := NewHealthHandler(nil)
		h.RegisterCheck(NewProvidersCheck(func() int { return 0 }))
		h.RegisterCheck(NewFuncCheck("ok", func(context.Context) error { return nil }))

		w := httptest.NewRecorder()
		h.HandleReady(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var status HealthStatus
		require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
		assert.Equal(t, "unhealthy", status.Status)
		assert.Equal(t, "fail", status.Checks["providers"].Status)
		assert.Contains(t, status.Checks["providers"].Message, "no generation providers")
		assert.Equal(t, "pass", status.Checks["ok"].Status)
	})
}

func TestHealthHandler_Version(t *testing.T) {
	h := NewHealthHandler(nil)
	w := httptest.NewRecorder()
	h.HandleVersion("1.2.3", "now", "abc")(w, httptest.NewRequest(http.MethodGet, "/version", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "1.2.3", resp.Data["version"])
	assert.Equal(t, "abc", resp.Data["git_commit"])
}

func TestFuncCheck(t *testing.T) {
	want := errors.New("down")
	c := NewFuncCheck("upstream", func(context.Context) error { return want })
	assert.Equal(t, "upstream", c.Name())
	assert.ErrorIs(t, c.Check(context.Background()), want)
}

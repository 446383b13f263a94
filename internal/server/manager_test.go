package server

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(h http.Handler) *Manager {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	return NewManager(h, cfg, zap.NewNop())
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Minute, cfg.WriteTimeout)
	assert.Equal(t, 1<<20, cfg.MaxHeaderBytes)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestManager_StartAndShutdown(t *testing.T) {
	m := newTestManager(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	require.NoError(t, m.Start())
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	resp, err := http.Get("http://" + m.Addr() + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	require.NoError(t, m.Shutdown(context.Background()))
	assert.False(t, m.IsRunning())
}

func TestManager_Lifecycle(t *testing.T) {
	t.Run("double start", func(t *testing.T) {
		m := newTestManager(http.NewServeMux())
		require.NoError(t, m.Start())
		t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

		err := m.Start()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already started")
	})

	t.Run("shutdown idempotent", func(t *testing.T) {
		m := newTestManager(http.NewServeMux())
		require.NoError(t, m.Start())
		require.NoError(t, m.Shutdown(context.Background()))
		require.NoError(t, m.Shutdown(context.Background()))
	})

	t.Run("start after shutdown", func(t *testing.T) {
		m := newTestManager(http.NewServeMux())
		require.NoError(t, m.Start())
		require.NoError(t, m.Shutdown(context.Background()))

		err := m.Start()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "closed")
	})
}

func TestManager_NoErrorsWhileServing(t *testing.T) {
	m := newTestManager(http.NewServeMux())
	require.NoError(t, m.Start())
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	select {
	case err := <-m.Errors():
		t.Fatalf("unexpected serve error: %v", err)
	default:
	}
}

func TestManager_AddrBeforeStart(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = ":9999"
	m := NewManager(http.NewServeMux(), cfg, nil)
	assert.Equal(t, ":9999", m.Addr())
	assert.True(t, m.IsRunning())
}

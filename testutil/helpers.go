package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tidwall/sjson"
)

// ReplyFunc scripts a ChatBackend. n is the 1-based call number. A status
// of 300 or more sends content as the raw error body.
type ReplyFunc func(n int, body []byte) (status int, content string)

// ChatBackend is an OpenAI-compatible chat completions server that records
// every request body.
type ChatBackend struct {
	Server *httptest.Server

	calls  atomic.Int32
	mu     sync.Mutex
	bodies [][]byte
}

// NewChatBackend starts a backend closed at test cleanup.
func NewChatBackend(t testing.TB, reply ReplyFunc) *ChatBackend {
	t.Helper()
	b := &ChatBackend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(b.calls.Add(1))
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, body)
		b.mu.Unlock()

		status, content := reply(n, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 300 {
			_, _ = w.Write([]byte(content))
			return
		}
		_, _ = w.Write([]byte(ChatCompletion(content)))
	}))
	t.Cleanup(b.Server.Close)
	return b
}

// StaticReply answers every call with 200 and content.
func StaticReply(content string) ReplyFunc {
	return func(int, []byte) (int, string) { return http.StatusOK, content }
}

// URL returns the backend base URL.
func (b *ChatBackend) URL() string { return b.Server.URL }

// Calls returns the number of requests served.
func (b *ChatBackend) Calls() int { return int(b.calls.Load()) }

// Body returns the i-th request body.
func (b *ChatBackend) Body(i int) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[i]
}

// ChatCompletion renders a chat completions response carrying content.
func ChatCompletion(content string) string {
	out, _ := sjson.Set(`{"object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant"},"finish_reason":"stop"}]}`,
		"choices.0.message.content", content)
	return out
}

// NoSleep replaces the transport backoff sleep so retries run instantly.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// TestContext returns a context cancelled at test cleanup.
func TestContext(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

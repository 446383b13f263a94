package llm

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// stubAdapter posts {"structured":bool,"model":...} to url and reads "text".
type stubAdapter struct {
	name       string
	url        string
	structured bool
}

func (s *stubAdapter) Name() string             { return s.name }
func (s *stubAdapter) DefaultModel() string     { return "stub-model" }
func (s *stubAdapter) SupportsVision() bool     { return false }
func (s *stubAdapter) SupportsStructured() bool { return s.structured }

func (s *stubAdapter) BuildRequest(ctx context.Context, call Call) (*http.Request, error) {
	body, err := MarshalBody(map[string]any{"model": call.Model, "structured": call.Structured})
	if err != nil {
		return nil, err
	}
	return NewJSONRequest(ctx, s.url, body)
}

func (s *stubAdapter) ExtractContent(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", assert.AnError
	}
	return gjson.GetBytes(body, "text").String(), nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubAdapter{name: "OpenAI"}))
	require.NoError(t, r.Register(&stubAdapter{name: "gemini"}))

	a, ok := r.Lookup("  openai ")
	require.True(t, ok)
	assert.Equal(t, "OpenAI", a.Name())

	_, ok = r.Lookup("unknown")
	assert.False(t, ok)

	assert.Equal(t, []string{"gemini", "openai"}, r.Names())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_RejectsDuplicatesAndBlanks(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubAdapter{name: "groq"}))
	assert.Error(t, r.Register(&stubAdapter{name: "GROQ"}))
	assert.Error(t, r.Register(&stubAdapter{name: " "}))
	assert.Error(t, r.Register(nil))
	assert.Panics(t, func() { r.MustRegister(&stubAdapter{name: "groq"}) })
}

package vision

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laptopkerja/contentgen/types"
)

var img = []types.ImageReference{types.URLImage("https://example.com/a.png")}

func TestIsVisionProviderImplemented(t *testing.T) {
	for _, p := range []string{"openai", "OpenRouter", " groq ", "gemini", "anthropic"} {
		assert.True(t, IsVisionProviderImplemented(p), p)
	}
	for _, p := range []string{"deepseek", "", "mistral"} {
		assert.False(t, IsVisionProviderImplemented(p), p)
	}
}

func TestIsVisionCapableModel(t *testing.T) {
	tests := []struct {
		ref  ModelRef
		want bool
	}{
		{ModelRef{Provider: "openai", Model: "gpt-4o-mini"}, true},
		{ModelRef{Provider: "openai", Model: "gpt-3.5-turbo"}, false},
		{ModelRef{Provider: "openai", Model: "o3-mini"}, false},
		{ModelRef{Provider: "openai", Model: "gpt-4o-audio-preview"}, false},
		{ModelRef{Provider: "openai", Model: "text-embedding-3-small"}, false},
		{ModelRef{Provider: "gemini", Model: "gemini-2.0-flash"}, true},
		{ModelRef{Provider: "gemini", Model: "models/gemini-1.5-pro"}, true},
		{ModelRef{Provider: "gemini", Model: "gemini-embedding-001"}, false},
		{ModelRef{Provider: "anthropic", Model: "claude-3-5-sonnet-latest"}, true},
		{ModelRef{Provider: "anthropic", Model: "claude-sonnet-4-20250514"}, true},
		{ModelRef{Provider: "anthropic", Model: "claude-2.1"}, false},
		{ModelRef{Provider: "groq", Model: "meta-llama/llama-4-scout-17b-16e-instruct"}, true},
		{ModelRef{Provider: "groq", Model: "llama-3.3-70b-versatile"}, false},
		{ModelRef{Provider: "openrouter", Model: "qwen/qwen2.5-vl-72b-instruct:free"}, true},
		{ModelRef{Provider: "openrouter", Model: "deepseek/deepseek-chat"}, false},
		{ModelRef{Provider: "deepseek", Model: "deepseek-chat"}, false},
		// metadata wins over the name
		{ModelRef{Provider: "openrouter", Model: "acme/plain", InputModalities: []string{"text", "image"}}, true},
		{ModelRef{Provider: "openrouter", Model: "openai/gpt-4o", InputModalities: []string{"text"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.ref.Provider+"/"+tt.ref.Model, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVisionCapableModel(tt.ref))
		})
	}
}

func TestRoute(t *testing.T) {
	t.Run("no images is off", func(t *testing.T) {
		d, err := Route("openai", "gpt-4o", nil, Options{})
		require.NoError(t, err)
		assert.Equal(t, ModeOff, d.Mode)
		assert.Empty(t, d.Warnings)
	})

	t.Run("no provider falls back to text", func(t *testing.T) {
		d, err := Route("", "", img, Options{})
		require.NoError(t, err)
		assert.Equal(t, ModeTextFallback, d.Mode)
		assert.NotEmpty(t, d.Warnings)
	})

	t.Run("provider without adapter and fallback allowed", func(t *testing.T) {
		d, err := Route("deepseek", "deepseek-chat", img, Options{AllowTextFallback: true})
		require.NoError(t, err)
		assert.Equal(t, ModeTextFallback, d.Mode)
		assert.GreaterOrEqual(t, len(d.Warnings), 1)
	})

	t.Run("provider without adapter and fallback disabled", func(t *testing.T) {
		_, err := Route("deepseek", "deepseek-chat", img, Options{})
		pe, ok := types.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, types.ErrValidation, pe.Code)
		assert.Equal(t, "provider", pe.Details.Field)
		assert.False(t, pe.Retryable)
	})

	t.Run("model fails predicate", func(t *testing.T) {
		_, err := Route("openai", "gpt-3.5-turbo", img, Options{AllowTextFallback: true})
		pe, ok := types.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, types.ErrValidation, pe.Code)
		assert.Equal(t, types.ClassValidation, pe.Classification)
		assert.Equal(t, "model", pe.Details.Field)
		assert.Equal(t, "gpt-3.5-turbo", pe.Details.Model)
	})

	t.Run("capable model is multimodal", func(t *testing.T) {
		d, err := Route("gemini", "gemini-2.0-flash", img, Options{})
		require.NoError(t, err)
		assert.Equal(t, ModeMultimodal, d.Mode)
	})

	t.Run("adapter flag overrides provider table", func(t *testing.T) {
		noParts := false
		d, err := Route("openai", "gpt-4o", img, Options{AllowTextFallback: true, AdapterVision: &noParts})
		require.NoError(t, err)
		assert.Equal(t, ModeTextFallback, d.Mode)

		_, err = Route("openai", "gpt-4o", img, Options{AdapterVision: &noParts})
		pe, ok := types.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, "provider", pe.Details.Field)
	})
}

func TestNormalizeImageReferences(t *testing.T) {
	png := base64.StdEncoding.EncodeToString([]byte("\x89PNG fake"))

	t.Run("cleans and dedups", func(t *testing.T) {
		got, err := NormalizeImageReferences([]types.ImageReference{
			{Kind: "URL", URL: "  https://example.com/a.png "},
			types.URLImage("https://example.com/a.png"),
			types.URLImage("data:image/png;base64," + png),
			types.DataImage(png, "IMAGE/JPG"),
		}, Limits{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, types.URLImage("https://example.com/a.png"), got[0])
		assert.Equal(t, types.DataImage(png, "image/png"), got[1])
		assert.Equal(t, types.DataImage(png, "image/jpeg"), got[2])
	})

	bad := []struct {
		name string
		ref  types.ImageReference
	}{
		{"ftp url", types.URLImage("ftp://example.com/a.png")},
		{"relative url", types.URLImage("/a.png")},
		{"empty url", types.URLImage(" ")},
		{"bad mime", types.DataImage(png, "image/bmp")},
		{"bad base64", types.DataImage("###", "image/png")},
		{"unknown kind", types.ImageReference{Kind: "file", URL: "x"}},
		{"non-base64 data url", types.URLImage("data:image/png,rawbytes")},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeImageReferences([]types.ImageReference{tt.ref}, Limits{})
			pe, ok := types.AsProviderError(err)
			require.True(t, ok)
			assert.Equal(t, "imageReferences", pe.Details.Field)
		})
	}

	t.Run("too many", func(t *testing.T) {
		refs := make([]types.ImageReference, 3)
		for i := range refs {
			refs[i] = types.URLImage("https://example.com/" + strings.Repeat("a", i+1) + ".png")
		}
		_, err := NormalizeImageReferences(refs, Limits{MaxImages: 2})
		assert.Equal(t, types.ErrValidation, types.CodeOf(err))
	})

	t.Run("too large", func(t *testing.T) {
		big := base64.StdEncoding.EncodeToString(make([]byte, 2048))
		_, err := NormalizeImageReferences([]types.ImageReference{types.DataImage(big, "image/png")}, Limits{MaxImageBytes: 1024})
		assert.Equal(t, types.ErrValidation, types.CodeOf(err))
	})
}

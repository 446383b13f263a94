package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageReference_Constructors(t *testing.T) {
	u := URLImage("https://example.com/a.png")
	assert.Equal(t, ImageKindURL, u.Kind)
	assert.Equal(t, "https://example.com/a.png", u.DataURL())

	d := DataImage("aGVsbG8=", "image/png")
	assert.Equal(t, ImageKindDataURL, d.Kind)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", d.DataURL())
}

func TestGenerationRequest_HasProvider(t *testing.T) {
	assert.False(t, GenerationRequest{Provider: "  "}.HasProvider())
	assert.True(t, GenerationRequest{Provider: "openai"}.HasProvider())
}

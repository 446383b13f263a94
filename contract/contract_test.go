package contract

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestResolve_KnownPlatforms(t *testing.T) {
	tests := []struct {
		input    string
		platform string
		mode     Mode
		tagMax   int
	}{
		{"TikTok", "TikTok", ModeShortForm, 5},
		{"  tiktok ", "TikTok", ModeShortForm, 5},
		{"YouTube", "YouTube Shorts", ModeShortForm, 5},
		{"instagram   REELS", "Instagram Reels", ModeShortForm, 10},
		{"twitter", "X (Twitter)", ModeShortForm, 3},
		{"Blog Blogger", "Blog Blogger", ModeArticle, 5},
		{"WordPress", "Blog WordPress", ModeArticle, 5},
		{"Shopee", "Shopee Video", ModeShortForm, 6},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c := Resolve(tt.input)
			assert.Equal(t, tt.platform, c.Platform)
			assert.Equal(t, tt.mode, c.Mode)
			assert.Equal(t, tt.tagMax, c.HashtagMax)
		})
	}
}

func TestResolve_UnknownFallsBackToDefault(t *testing.T) {
	assert.Equal(t, Default(), Resolve("Myspace"))
	assert.Equal(t, Default(), Resolve(""))
	assert.False(t, Resolve("").IsArticle())
}

func TestArticleContracts(t *testing.T) {
	c := Resolve("Blog Blogger")
	assert.True(t, c.IsArticle())
	assert.False(t, c.RequireCTAInDescription)
	assert.Equal(t, MetaDescriptionMaxChar, c.DescriptionMaxChars)
}

func TestHashtagCap(t *testing.T) {
	assert.Equal(t, 5, Resolve("TikTok").HashtagCap())
	assert.Equal(t, MaxHashtags, PlatformContract{HashtagMax: 40}.HashtagCap())
}

func TestPlatforms(t *testing.T) {
	names := Platforms()
	assert.Len(t, names, len(contracts))
	assert.True(t, slices.Contains(names, "LinkedIn"))
}

// Every contract, known or default, has internally consistent bounds.
func TestProperty_ContractsConsistent(t *testing.T) {
	known := append(Platforms(), "")
	for k := range aliases {
		known = append(known, k)
	}
	slices.Sort(known)

	rapid.Check(t, func(rt *rapid.T) {
		var name string
		if rapid.Bool().Draw(rt, "known") {
			name = rapid.SampledFrom(known).Draw(rt, "name")
		} else {
			name = rapid.String().Draw(rt, "name")
		}
		c := Resolve(name)
		if c.HashtagMin < 0 || c.HashtagMin > c.HashtagMax || c.HashtagMax > MaxHashtags {
			rt.Fatalf("%q: hashtag bounds %d..%d", name, c.HashtagMin, c.HashtagMax)
		}
		if c.HookMin > c.HookMax || c.HookMin <= 0 {
			rt.Fatalf("%q: hook bounds %d..%d", name, c.HookMin, c.HookMax)
		}
		if c.DescriptionMinSentences > c.DescriptionMaxSentences || c.DescriptionMaxChars <= 0 {
			rt.Fatalf("%q: description bounds", name)
		}
	})
}

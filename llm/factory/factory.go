// Package factory builds the provider registry. It imports every provider
// sub-package so that llm itself stays free of provider code.
package factory

import (
	"fmt"

	"github.com/laptopkerja/contentgen/config"
	"github.com/laptopkerja/contentgen/llm"
	"github.com/laptopkerja/contentgen/llm/providers/anthropic"
	"github.com/laptopkerja/contentgen/llm/providers/gemini"
	"github.com/laptopkerja/contentgen/llm/providers/openaicompat"
	"github.com/laptopkerja/contentgen/vision"
)

// Providers lists the ids NewRegistry registers.
var Providers = []string{"anthropic", "deepseek", "gemini", "groq", "openai", "openrouter"}

// NewRegistry registers every supported provider, applying base URL and
// default model overrides from gen.Providers.
func NewRegistry(gen config.GenerationConfig) (*llm.Registry, error) {
	r := llm.NewRegistry()

	compat := []openaicompat.Config{
		openaicompat.OpenAI(),
		openaicompat.OpenRouter(gen.AppURL, gen.AppTitle),
		openaicompat.Groq(),
		openaicompat.DeepSeek(),
	}
	for _, c := range compat {
		pc := gen.Provider(c.ProviderName)
		if pc.BaseURL != "" {
			c.BaseURL = pc.BaseURL
		}
		if pc.DefaultModel != "" {
			c.DefaultModel = pc.DefaultModel
		}
		c.Vision = vision.IsVisionProviderImplemented(c.ProviderName)
		if err := r.Register(openaicompat.New(c)); err != nil {
			return nil, fmt.Errorf("register %s: %w", c.ProviderName, err)
		}
	}

	gc := gen.Provider("gemini")
	if err := r.Register(gemini.New(gemini.Config{BaseURL: gc.BaseURL, DefaultModel: gc.DefaultModel})); err != nil {
		return nil, fmt.Errorf("register gemini: %w", err)
	}

	ac := gen.Provider("anthropic")
	if err := r.Register(anthropic.New(anthropic.Config{BaseURL: ac.BaseURL, DefaultModel: ac.DefaultModel})); err != nil {
		return nil, fmt.Errorf("register anthropic: %w", err)
	}

	return r, nil
}

package vision

import (
	"regexp"
	"strings"
)

// ModelRef identifies a model and, when the provider's listing exposes it,
// the model's input modalities.
type ModelRef struct {
	Provider        string
	Model           string
	InputModalities []string
}

// visionProviders lists providers with an image-capable request adapter.
var visionProviders = map[string]bool{
	"openai":     true,
	"openrouter": true,
	"groq":       true,
	"gemini":     true,
	"anthropic":  true,
}

// modelPatterns are name heuristics per provider, used only when no
// modality metadata is available.
var modelPatterns = map[string]*regexp.Regexp{
	"openai":     regexp.MustCompile(`^(chatgpt-4o|gpt-4o|gpt-4\.1|gpt-4\.5|gpt-4-turbo|gpt-4-vision|gpt-5|o1$|o1-20|o3$|o3-20|o3-pro|o4)`),
	"openrouter": regexp.MustCompile(`(vision|[-/]vl|gpt-4o|gpt-4\.1|gpt-5|claude-3|claude-(sonnet|opus|haiku)-4|gemini|gemma-3|llava|pixtral|llama-4|qwen2\.5-vl|grok-2-vision|grok-4)`),
	"groq":       regexp.MustCompile(`(vision|llama-4-(scout|maverick))`),
	"gemini":     regexp.MustCompile(`^(models/)?gemini-(1\.5|2|3|exp|flash|pro-vision)`),
	"anthropic":  regexp.MustCompile(`^claude-(3|(sonnet|opus|haiku)-4)`),
}

// textOnly rejects variants that never accept images even when their family
// name matches.
var textOnly = regexp.MustCompile(`(embedding|embed|tts|whisper|audio|realtime|transcribe|moderation|-search-|aqa|guard)`)

// IsVisionProviderImplemented reports whether provider has an image-capable
// adapter.
func IsVisionProviderImplemented(provider string) bool {
	return visionProviders[normalize(provider)]
}

// IsVisionCapableModel reports whether the model accepts image input.
// Explicit modality metadata wins over name heuristics.
func IsVisionCapableModel(ref ModelRef) bool {
	provider := normalize(ref.Provider)
	if !visionProviders[provider] {
		return false
	}
	if len(ref.InputModalities) > 0 {
		for _, m := range ref.InputModalities {
			if strings.EqualFold(strings.TrimSpace(m), "image") {
				return true
			}
		}
		return false
	}
	model := normalize(ref.Model)
	if model == "" || textOnly.MatchString(model) {
		return false
	}
	re, ok := modelPatterns[provider]
	return ok && re.MatchString(model)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

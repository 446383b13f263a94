package discovery

import "github.com/laptopkerja/contentgen/vision"

type featuredModel struct {
	id            string
	label         string
	contextWindow int
}

// featured is the static shortlist per provider, shown first in listings
// and returned as-is when no API key is given.
var featured = map[string][]featuredModel{
	"openai": {
		{"gpt-4o-mini", "GPT-4o mini", 128000},
		{"gpt-4o", "GPT-4o", 128000},
		{"gpt-4.1-mini", "GPT-4.1 mini", 1047576},
	},
	"openrouter": {
		{"openai/gpt-4o-mini", "OpenAI: GPT-4o mini", 128000},
		{"google/gemini-2.0-flash-exp:free", "Google: Gemini 2.0 Flash Experimental (free)", 1048576},
		{"meta-llama/llama-3.3-70b-instruct:free", "Meta: Llama 3.3 70B Instruct (free)", 131072},
		{"deepseek/deepseek-chat-v3-0324:free", "DeepSeek: DeepSeek V3 0324 (free)", 163840},
	},
	"groq": {
		{"llama-3.3-70b-versatile", "Llama 3.3 70B Versatile", 131072},
		{"llama-3.1-8b-instant", "Llama 3.1 8B Instant", 131072},
		{"meta-llama/llama-4-scout-17b-16e-instruct", "Llama 4 Scout", 131072},
	},
	"deepseek": {
		{"deepseek-chat", "DeepSeek Chat", 65536},
		{"deepseek-reasoner", "DeepSeek Reasoner", 65536},
	},
	"gemini": {
		{"gemini-2.0-flash", "Gemini 2.0 Flash", 1048576},
		{"gemini-2.0-flash-lite", "Gemini 2.0 Flash-Lite", 1048576},
		{"gemini-1.5-flash", "Gemini 1.5 Flash", 1048576},
	},
	"anthropic": {
		{"claude-3-5-haiku-latest", "Claude 3.5 Haiku", 200000},
		{"claude-3-7-sonnet-latest", "Claude 3.7 Sonnet", 200000},
		{"claude-sonnet-4-20250514", "Claude Sonnet 4", 200000},
	},
}

func isFeatured(provider, id string) bool {
	for _, f := range featured[provider] {
		if f.id == id {
			return true
		}
	}
	return false
}

func featuredModels(provider string) []Model {
	list := featured[provider]
	out := make([]Model, 0, len(list))
	for _, f := range list {
		out = append(out, Model{
			ID:             f.id,
			Label:          f.label,
			IsFree:         IsFreeModel(provider, f.id, nil),
			ContextWindow:  f.contextWindow,
			IsFeatured:     true,
			SupportsVision: vision.IsVisionCapableModel(vision.ModelRef{Provider: provider, Model: f.id}),
		})
	}
	return out
}

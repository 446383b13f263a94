// Package openaicompat adapts every provider that speaks the OpenAI chat
// completions format: openai, openrouter, groq and deepseek.
package openaicompat

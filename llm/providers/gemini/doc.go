// Package gemini adapts the Google Generative Language generateContent API.
package gemini

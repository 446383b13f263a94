// Package anthropic adapts the Anthropic Messages API.
package anthropic

// Package testutil provides fakes shared by package tests: an
// OpenAI-compatible chat backend and helpers for the transport.
package testutil

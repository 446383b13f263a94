// Package config loads contentgen configuration.
//
// Defaults are overlaid by a YAML file and then by CONTENTGEN_* environment
// variables. Per-provider transport bounds are resolved at request time by
// RequestSettings, which also honours the AI_* variables. A Store holds the
// active snapshot and a Reloader refreshes it when the file changes.
package config

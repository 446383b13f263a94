package config

import (
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/laptopkerja/contentgen/types"
)

// EnvLookup matches os.LookupEnv.
type EnvLookup func(key string) (string, bool)

// RequestSettings resolves the transport bounds for one provider at request
// time. Precedence per value: AI_<PROVIDER>_* env, AI_* env, provider YAML,
// global YAML, built-in default. Every value is clamped to its bounds.
type RequestSettings struct {
	gen    GenerationConfig
	lookup EnvLookup
}

// NewRequestSettings creates a resolver. A nil lookup uses os.LookupEnv.
func NewRequestSettings(gen GenerationConfig, lookup EnvLookup) *RequestSettings {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &RequestSettings{gen: gen, lookup: lookup}
}

// Resolve returns the request config for provider.
func (s *RequestSettings) Resolve(provider string) types.RequestConfig {
	pc := s.gen.Provider(provider)
	prefix := envProviderPrefix(provider)

	timeout := firstInt(
		s.envInt(prefix, "TIMEOUT_MS"),
		s.envInt("AI", "TIMEOUT_MS"),
		positive(pc.TimeoutMs),
		positive(s.gen.TimeoutMs),
	)
	retry := firstInt(
		s.envInt(prefix, "RETRY_COUNT"),
		s.envInt("AI", "RETRY_COUNT"),
		pc.RetryCount,
		&s.gen.RetryCount,
	)
	backoff := firstInt(
		s.envInt(prefix, "RETRY_BACKOFF_MS"),
		s.envInt("AI", "RETRY_BACKOFF_MS"),
		positive(pc.RetryBackoffMs),
		positive(s.gen.RetryBackoffMs),
	)

	return types.RequestConfig{
		TimeoutMs:      clamp(orDefault(timeout, DefaultTimeoutMs), MinTimeoutMs, MaxTimeoutMs),
		RetryCount:     clamp(orDefault(retry, DefaultRetryCount), MinRetryCount, MaxRetryCount),
		RetryBackoffMs: clamp(orDefault(backoff, DefaultRetryBackoffMs), MinRetryBackoffMs, MaxRetryBackoffMs),
	}
}

// envInt reads prefix_name. An empty prefix or an unparsable value yields nil.
func (s *RequestSettings) envInt(prefix, name string) *int {
	if prefix == "" {
		return nil
	}
	raw, ok := s.lookup(prefix + "_" + name)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &v
}

// envProviderPrefix maps "open-router" to "AI_OPEN_ROUTER". An empty
// provider has no prefix.
func envProviderPrefix(provider string) string {
	name := strings.TrimSpace(provider)
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("AI_")
	for _, r := range strings.ToUpper(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func firstInt(candidates ...*int) *int {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func positive(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}

func orDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

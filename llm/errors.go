package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/laptopkerja/contentgen/types"
)

// maxErrorMessageLen bounds the raw body echoed into an error message.
const maxErrorMessageLen = 300

// MapHTTPError converts a non-2xx status into a classified ProviderError.
// 408 and 504 keep the UPSTREAM_ERROR code but classify as timeout.
func MapHTTPError(status int, msg string) *types.ProviderError {
	if msg == "" {
		msg = http.StatusText(status)
	}

	var e *types.ProviderError
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e = types.NewProviderError(types.ErrAuth, msg)
	case status == http.StatusNotFound:
		e = types.NewProviderError(types.ErrModelNotFound, msg)
	case status == http.StatusTooManyRequests:
		e = types.NewProviderError(types.ErrRateLimit, msg)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		e = types.NewProviderError(types.ErrUpstream, msg).WithClassification(types.ClassTimeout)
	case status >= 500:
		e = types.NewProviderError(types.ErrUpstream, msg)
	case status >= 400:
		e = types.NewProviderError(types.ErrBadRequest, msg)
	default:
		// A 1xx/3xx that reached us was not followed; treat as upstream noise.
		e = types.NewProviderError(types.ErrUpstream, fmt.Sprintf("unexpected status %d: %s", status, msg))
	}
	return e.WithStatus(status)
}

// MapTransportError classifies a failure that produced no HTTP status.
// Deadline and cancellation become TIMEOUT, everything else NETWORK_ERROR.
func MapTransportError(err error) *types.ProviderError {
	if pe, ok := types.AsProviderError(err); ok {
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return types.NewProviderError(types.ErrTimeout, "request aborted").WithCause(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return types.NewProviderError(types.ErrTimeout, "request timed out").WithCause(err)
	}
	return types.NewProviderError(types.ErrNetwork, "network failure").WithCause(err)
}

// ReadErrorMessage pulls a human readable message out of an error body.
// OpenAI-style, Gemini and Anthropic bodies all nest it under error.message.
func ReadErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "message", "error.status", "detail"} {
			if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
				msg := r.Str
				if typ := gjson.GetBytes(body, "error.type"); typ.Type == gjson.String && typ.Str != "" {
					msg = fmt.Sprintf("%s (type: %s)", msg, typ.Str)
				}
				return msg
			}
		}
		if r := gjson.GetBytes(body, "error"); r.Type == gjson.String {
			return r.Str
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorMessageLen {
		msg = msg[:maxErrorMessageLen] + "..."
	}
	return msg
}

var unsupportedPattern = regexp.MustCompile(`(?i)unsupported|not[ _]supported|does not support`)

// IsUnsupportedParameter reports whether err is a bad request rejecting a
// request parameter, which is how backends refuse structured mode.
func IsUnsupportedParameter(err error) bool {
	pe, ok := types.AsProviderError(err)
	if !ok || pe.Code != types.ErrBadRequest {
		return false
	}
	return unsupportedPattern.MatchString(pe.Message)
}

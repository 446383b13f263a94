package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/laptopkerja/contentgen/types"
)

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		code      types.ErrorCode
		class     types.Classification
		retryable bool
	}{
		{429, types.ErrRateLimit, types.ClassRateLimit, true},
		{401, types.ErrAuth, types.ClassAuth, false},
		{403, types.ErrAuth, types.ClassAuth, false},
		{404, types.ErrModelNotFound, types.ClassModel, false},
		{503, types.ErrUpstream, types.ClassUpstream, true},
		{500, types.ErrUpstream, types.ClassUpstream, true},
		{502, types.ErrUpstream, types.ClassUpstream, true},
		{408, types.ErrUpstream, types.ClassTimeout, true},
		{504, types.ErrUpstream, types.ClassTimeout, true},
		{400, types.ErrBadRequest, types.ClassBadRequest, false},
		{422, types.ErrBadRequest, types.ClassBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			e := MapHTTPError(tt.status, "boom")
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, tt.class, e.Classification)
			assert.Equal(t, tt.retryable, e.Retryable)
			assert.Equal(t, tt.status, e.Details.Status)
			assert.Equal(t, "boom", e.Message)
		})
	}
}

func TestMapHTTPError_EmptyMessageUsesStatusText(t *testing.T) {
	assert.Equal(t, "Service Unavailable", MapHTTPError(503, "").Message)
}

func TestMapHTTPError_RetryableOnlyForRetryClasses(t *testing.T) {
	allowed := map[types.Classification]bool{}
	for _, c := range types.RetryableClassifications() {
		allowed[c] = true
	}
	rapid.Check(t, func(t *rapid.T) {
		status := rapid.IntRange(100, 599).Draw(t, "status")
		e := MapHTTPError(status, "x")
		if e.Retryable && !allowed[e.Classification] {
			t.Fatalf("status %d retryable with class %s", status, e.Classification)
		}
	})
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestMapTransportError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  types.ErrorCode
		class types.Classification
	}{
		{"deadline", context.DeadlineExceeded, types.ErrTimeout, types.ClassTimeout},
		{"canceled", fmt.Errorf("do: %w", context.Canceled), types.ErrTimeout, types.ClassTimeout},
		{"net timeout", &net.OpError{Op: "read", Err: timeoutErr{}}, types.ErrTimeout, types.ClassTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "nowhere.invalid"}, types.ErrNetwork, types.ClassNetwork},
		{"refused", errors.New("connection refused"), types.ErrNetwork, types.ClassNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := MapTransportError(tt.err)
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, tt.class, e.Classification)
			assert.True(t, e.Retryable)
			assert.ErrorIs(t, e, tt.err)
		})
	}
}

func TestMapTransportError_KeepsProviderError(t *testing.T) {
	orig := types.NewProviderError(types.ErrAuth, "nope")
	assert.Same(t, orig, MapTransportError(orig))
}

func TestReadErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"openai", `{"error":{"message":"bad key","type":"invalid_request_error"}}`, "bad key (type: invalid_request_error)"},
		{"gemini", `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, "API key not valid"},
		{"flat", `{"message":"slow down"}`, "slow down"},
		{"string error", `{"error":"model missing"}`, "model missing"},
		{"plain text", "upstream exploded\n", "upstream exploded"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadErrorMessage([]byte(tt.body)))
		})
	}
}

func TestReadErrorMessage_TruncatesLongBodies(t *testing.T) {
	body := make([]byte, 1000)
	for i := range body {
		body[i] = 'a'
	}
	msg := ReadErrorMessage(body)
	require.Len(t, msg, maxErrorMessageLen+3)
}

func TestIsUnsupportedParameter(t *testing.T) {
	assert.True(t, IsUnsupportedParameter(MapHTTPError(400, "response_format is not supported by this model")))
	assert.True(t, IsUnsupportedParameter(MapHTTPError(400, "Unsupported parameter: response_format")))
	assert.True(t, IsUnsupportedParameter(MapHTTPError(422, "model does not support JSON mode")))
	assert.False(t, IsUnsupportedParameter(MapHTTPError(400, "prompt too long")))
	assert.False(t, IsUnsupportedParameter(MapHTTPError(503, "unsupported region")))
	assert.False(t, IsUnsupportedParameter(errors.New("unsupported")))
}

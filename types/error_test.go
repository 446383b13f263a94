package types

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewProviderError(ErrUpstream, "upstream failed").
		WithCause(root).
		WithStatus(503).
		WithSource("openai", "gpt-4o-mini", StageRequest)

	assert.Equal(t, ErrUpstream, CodeOf(err))
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, root)
	assert.Contains(t, err.Error(), "openai/gpt-4o-mini")
	assert.Contains(t, err.Error(), "status 503")

	wrapped := errors.Join(errors.New("outer"), err)
	pe, ok := AsProviderError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "openai", pe.Details.Provider)
}

func TestNewProviderError_DerivesClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code      ErrorCode
		class     Classification
		retryable bool
	}{
		{ErrAuth, ClassAuth, false},
		{ErrModelNotFound, ClassModel, false},
		{ErrRateLimit, ClassRateLimit, true},
		{ErrUpstream, ClassUpstream, true},
		{ErrBadRequest, ClassBadRequest, false},
		{ErrTimeout, ClassTimeout, true},
		{ErrNetwork, ClassNetwork, true},
		{ErrEmptyResponse, ClassEmpty, true},
		{ErrInvalidJSON, ClassJSONInvalid, true},
		{ErrNotImplemented, ClassProvider, false},
		{ErrValidation, ClassValidation, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			e := NewProviderError(tt.code, "x")
			assert.Equal(t, tt.class, e.Classification)
			assert.Equal(t, tt.retryable, e.Retryable)
		})
	}
}

func TestNewProviderError_UnknownCodeFallsBackToUpstream(t *testing.T) {
	e := NewProviderError(ErrorCode("WHATEVER"), "x")
	assert.Equal(t, ErrUpstream, e.Code)
	assert.Equal(t, ClassUpstream, e.Classification)
}

func TestProviderError_HTTPStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusGatewayTimeout, NewProviderError(ErrTimeout, "").HTTPStatus())
	assert.Equal(t, http.StatusGatewayTimeout,
		NewProviderError(ErrUpstream, "").WithClassification(ClassTimeout).HTTPStatus())
	assert.Equal(t, http.StatusTooManyRequests, NewProviderError(ErrRateLimit, "").HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, NewValidationError("model", "bad").HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, NewProviderError(ErrAuth, "").HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, NewProviderError(ErrInvalidJSON, "").HTTPStatus())
}

func TestProviderError_WithRuntime(t *testing.T) {
	e := NewProviderError(ErrTimeout, "slow").
		WithRuntime(1234, 2, RequestConfig{TimeoutMs: 9000, RetryCount: 1, RetryBackoffMs: 700})

	assert.Equal(t, int64(1234), e.Details.ElapsedMs)
	assert.Equal(t, 2, e.Details.AttemptsUsed)
	assert.Equal(t, 9000, e.Details.TimeoutMs)
	assert.Equal(t, 1, e.Details.RetryCount)
	assert.Equal(t, 700, e.Details.RetryBackoffMs)
}

func TestHelpers_NonProviderError(t *testing.T) {
	plain := errors.New("plain")
	assert.False(t, IsRetryable(plain))
	assert.Equal(t, ErrorCode(""), CodeOf(plain))
	_, ok := AsProviderError(plain)
	assert.False(t, ok)
}

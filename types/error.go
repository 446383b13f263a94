package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the closed set of failure codes surfaced to callers.
type ErrorCode string

const (
	ErrAuth           ErrorCode = "AUTH_ERROR"
	ErrModelNotFound  ErrorCode = "MODEL_NOT_FOUND"
	ErrRateLimit      ErrorCode = "RATE_LIMIT"
	ErrUpstream       ErrorCode = "UPSTREAM_ERROR"
	ErrBadRequest     ErrorCode = "BAD_REQUEST"
	ErrTimeout        ErrorCode = "TIMEOUT"
	ErrNetwork        ErrorCode = "NETWORK_ERROR"
	ErrEmptyResponse  ErrorCode = "EMPTY_RESPONSE"
	ErrInvalidJSON    ErrorCode = "INVALID_JSON"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"
	ErrValidation     ErrorCode = "VALIDATION_ERROR"
)

// Classification is the coarse failure category used for retry decisions
// and caller-facing status mapping.
type Classification string

const (
	ClassAuth        Classification = "auth"
	ClassModel       Classification = "model"
	ClassRateLimit   Classification = "rate_limit"
	ClassTimeout     Classification = "timeout"
	ClassUpstream    Classification = "upstream"
	ClassBadRequest  Classification = "bad_request"
	ClassNetwork     Classification = "network"
	ClassEmpty       Classification = "empty"
	ClassJSONInvalid Classification = "json_invalid"
	ClassProvider    Classification = "provider"
	ClassValidation  Classification = "validation"
)

// Stage names the step of a request that failed.
const (
	StageValidate = "validate"
	StageRequest  = "request"
	StageParse    = "parse"
	StageModels   = "models"
)

type codeRule struct {
	class     Classification
	retryable bool
}

var codeRules = map[ErrorCode]codeRule{
	ErrAuth:           {ClassAuth, false},
	ErrModelNotFound:  {ClassModel, false},
	ErrRateLimit:      {ClassRateLimit, true},
	ErrUpstream:       {ClassUpstream, true},
	ErrBadRequest:     {ClassBadRequest, false},
	ErrTimeout:        {ClassTimeout, true},
	ErrNetwork:        {ClassNetwork, true},
	ErrEmptyResponse:  {ClassEmpty, true},
	ErrInvalidJSON:    {ClassJSONInvalid, true},
	ErrNotImplemented: {ClassProvider, false},
	ErrValidation:     {ClassValidation, false},
}

// ErrorDetails carries the diagnostic context of a ProviderError.
type ErrorDetails struct {
	Provider       string `json:"provider,omitempty"`
	Model          string `json:"model,omitempty"`
	Stage          string `json:"stage,omitempty"`
	Status         int    `json:"status,omitempty"`
	Field          string `json:"field,omitempty"`
	ElapsedMs      int64  `json:"elapsedMs,omitempty"`
	AttemptsUsed   int    `json:"attemptsUsed,omitempty"`
	TimeoutMs      int    `json:"timeoutMs,omitempty"`
	RetryCount     int    `json:"retryCount"`
	RetryBackoffMs int    `json:"retryBackoffMs,omitempty"`
}

// ProviderError is the single typed error returned by the generation
// pipeline. Classification and Retryable are derived from Code.
type ProviderError struct {
	Code           ErrorCode      `json:"code"`
	Classification Classification `json:"classification"`
	Retryable      bool           `json:"retryable"`
	Message        string         `json:"message"`
	Details        ErrorDetails   `json:"details"`
	Cause          error          `json:"-"`
}

// NewProviderError creates a ProviderError whose classification and
// retryability follow the code table.
func NewProviderError(code ErrorCode, message string) *ProviderError {
	rule, ok := codeRules[code]
	if !ok {
		rule = codeRules[ErrUpstream]
		code = ErrUpstream
	}
	return &ProviderError{
		Code:           code,
		Classification: rule.class,
		Retryable:      rule.retryable,
		Message:        message,
	}
}

// NewValidationError creates a non-retryable VALIDATION_ERROR naming the
// offending request field.
func NewValidationError(field, message string) *ProviderError {
	e := NewProviderError(ErrValidation, message)
	e.Details.Field = field
	e.Details.Stage = StageValidate
	return e
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	prefix := fmt.Sprintf("[%s/%s]", e.Code, e.Classification)
	if e.Details.Provider != "" {
		prefix += " " + e.Details.Provider
		if e.Details.Model != "" {
			prefix += "/" + e.Details.Model
		}
	}
	if e.Details.Status != 0 {
		prefix += fmt.Sprintf(" (status %d)", e.Details.Status)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// WithCause adds a cause to the error.
func (e *ProviderError) WithCause(cause error) *ProviderError {
	e.Cause = cause
	return e
}

// WithStatus records the upstream HTTP status.
func (e *ProviderError) WithStatus(status int) *ProviderError {
	e.Details.Status = status
	return e
}

// WithClassification overrides the classification while keeping the code.
// Only UPSTREAM_ERROR uses this, for 408/504 which classify as timeout.
func (e *ProviderError) WithClassification(c Classification) *ProviderError {
	e.Classification = c
	return e
}

// WithSource sets provider, model and stage.
func (e *ProviderError) WithSource(provider, model, stage string) *ProviderError {
	e.Details.Provider = provider
	e.Details.Model = model
	e.Details.Stage = stage
	return e
}

// WithRuntime attaches the request settings and counters actually used.
func (e *ProviderError) WithRuntime(elapsedMs int64, attempts int, cfg RequestConfig) *ProviderError {
	e.Details.ElapsedMs = elapsedMs
	e.Details.AttemptsUsed = attempts
	e.Details.TimeoutMs = cfg.TimeoutMs
	e.Details.RetryCount = cfg.RetryCount
	e.Details.RetryBackoffMs = cfg.RetryBackoffMs
	return e
}

// HTTPStatus maps the classification to the status a caller should answer
// with: timeout 504, rate_limit 429, validation 400, everything else 502.
func (e *ProviderError) HTTPStatus() int {
	switch e.Classification {
	case ClassTimeout:
		return http.StatusGatewayTimeout
	case ClassRateLimit:
		return http.StatusTooManyRequests
	case ClassValidation:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// AsProviderError extracts a ProviderError from an error chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if pe, ok := AsProviderError(err); ok {
		return pe.Retryable
	}
	return false
}

// CodeOf extracts the error code from an error.
func CodeOf(err error) ErrorCode {
	if pe, ok := AsProviderError(err); ok {
		return pe.Code
	}
	return ""
}

// RetryableClassifications lists the only classifications that may carry
// Retryable=true.
func RetryableClassifications() []Classification {
	return []Classification{ClassTimeout, ClassNetwork, ClassRateLimit, ClassUpstream, ClassEmpty, ClassJSONInvalid}
}

// Codes returns every defined error code.
func Codes() []ErrorCode {
	out := make([]ErrorCode, 0, len(codeRules))
	for c := range codeRules {
		out = append(out, c)
	}
	return out
}

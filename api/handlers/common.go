package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/laptopkerja/contentgen/types"
)

// =============================================================================
// 📦 Response envelope
// =============================================================================

// Response is the envelope of every JSON reply.
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	RequestID string     `json:"request_id,omitempty"`
}

// ErrorInfo mirrors types.ProviderError on the wire.
type ErrorInfo struct {
	Code           string              `json:"code"`
	Message        string              `json:"message"`
	Classification string              `json:"classification,omitempty"`
	Retryable      bool                `json:"retryable"`
	Details        *types.ErrorDetails `json:"details,omitempty"`
}

// Codes for failures that happen before the pipeline runs.
const (
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL_ERROR"
)

// =============================================================================
// 🎯 Writers
// =============================================================================

// WriteJSON writes data with status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	// Headers are already out; an encode failure cannot be reported.
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 envelope around data.
func WriteSuccess(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: requestID,
	})
}

// WriteError writes err. A *types.ProviderError answers with its
// HTTPStatus; anything else is a 500.
func WriteError(w http.ResponseWriter, err error, logger *zap.Logger) {
	status := http.StatusInternalServerError
	info := &ErrorInfo{Code: CodeInternal, Message: "internal error"}

	if pe, ok := types.AsProviderError(err); ok {
		status = pe.HTTPStatus()
		details := pe.Details
		info = &ErrorInfo{
			Code:           string(pe.Code),
			Message:        pe.Message,
			Classification: string(pe.Classification),
			Retryable:      pe.Retryable,
			Details:        &details,
		}
	}

	if logger != nil {
		logger.Warn("API error",
			zap.String("code", info.Code),
			zap.String("classification", info.Classification),
			zap.Int("status", status),
			zap.Bool("retryable", info.Retryable),
			zap.Error(err))
	}

	WriteJSON(w, status, Response{
		Success:   false,
		Error:     info,
		Timestamp: time.Now(),
	})
}

// WriteErrorMessage writes a plain error that did not come from the pipeline.
func WriteErrorMessage(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, Response{
		Success:   false,
		Error:     &ErrorInfo{Code: code, Message: message},
		Timestamp: time.Now(),
	})
}

// =============================================================================
// 🛡️ Request helpers
// =============================================================================

// DecodeJSONBody decodes a bounded, strict JSON body into dst. Failures are
// VALIDATION_ERROR on field "body".
func DecodeJSONBody(r *http.Request, dst any, maxBytes int64) error {
	if r.Body == nil || r.Body == http.NoBody {
		return types.NewValidationError("body", "request body is empty")
	}
	body := io.Reader(r.Body)
	if maxBytes > 0 {
		body = io.LimitReader(r.Body, maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return types.NewValidationError("body", "failed to read request body").WithCause(err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return types.NewValidationError("body", fmt.Sprintf("request body exceeds %d bytes", maxBytes))
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return types.NewValidationError("body", "invalid JSON body").WithCause(err)
	}
	if decoder.More() {
		return types.NewValidationError("body", "request body must contain a single JSON object")
	}
	return nil
}

// ValidateContentType reports whether the request declares a JSON body.
func ValidateContentType(r *http.Request) error {
	switch r.Header.Get("Content-Type") {
	case "application/json", "application/json; charset=utf-8":
		return nil
	}
	return types.NewValidationError("content-type", "Content-Type must be application/json")
}

// RequireMethod writes 405 and returns false unless r uses method.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	WriteErrorMessage(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed,
		fmt.Sprintf("method %s is not allowed", r.Method))
	return false
}

// =============================================================================
// 📊 Status capturing writer
// =============================================================================

// ResponseWriter records the status code written through it.
type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
	Written    bool
}

// NewResponseWriter wraps w with a default status of 200.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		StatusCode:     http.StatusOK,
	}
}

// WriteHeader records the first status code.
func (rw *ResponseWriter) WriteHeader(code int) {
	if !rw.Written {
		rw.StatusCode = code
		rw.Written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.Written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/laptopkerja/contentgen/api"
	"github.com/laptopkerja/contentgen/types"
)

// Generator is the pipeline behind POST /v1/generate.
type Generator interface {
	Generate(ctx context.Context, req types.GenerationRequest) (*types.GenerationResult, error)
}

// GenerateHandler serves content generation.
type GenerateHandler struct {
	generator    Generator
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewGenerateHandler creates the handler. maxBodyBytes <= 0 disables the
// body limit.
func NewGenerateHandler(generator Generator, maxBodyBytes int64, logger *zap.Logger) *GenerateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerateHandler{
		generator:    generator,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With(zap.String("handler", "generate")),
	}
}

// HandleGenerate serves POST /v1/generate. Pipeline failures answer with
// the status their classification maps to.
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := ValidateContentType(r); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	var req api.GenerateRequest
	if err := DecodeJSONBody(r, &req, h.maxBodyBytes); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	result, err := h.generator.Generate(r.Context(), req.ToGenerationRequest(r.Header.Get(api.ProviderKeyHeader)))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, result, result.Runtime.RequestID)
}

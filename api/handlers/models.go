package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/laptopkerja/contentgen/api"
	"github.com/laptopkerja/contentgen/discovery"
	"github.com/laptopkerja/contentgen/types"
)

// ModelDetector lists provider models.
type ModelDetector interface {
	Detect(ctx context.Context, req discovery.DetectRequest) (*discovery.DetectResult, error)
}

// ModelsHandler serves model discovery.
type ModelsHandler struct {
	detector ModelDetector
	logger   *zap.Logger
}

// NewModelsHandler creates the handler.
func NewModelsHandler(detector ModelDetector, logger *zap.Logger) *ModelsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelsHandler{
		detector: detector,
		logger:   logger.With(zap.String("handler", "models")),
	}
}

// HandleModels serves GET /v1/models?provider=<id>&free=<bool>.
func (h *ModelsHandler) HandleModels(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	req := discovery.DetectRequest{
		Provider: q.Get("provider"),
		APIKey:   r.Header.Get(api.ProviderKeyHeader),
	}
	if raw := strings.TrimSpace(q.Get("free")); raw != "" {
		free, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, types.NewValidationError("free", "free must be a boolean"), h.logger)
			return
		}
		req.FreeOnly = free
	}

	result, err := h.detector.Detect(r.Context(), req)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, result, "")
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/audit"
	"github.com/ekaya-inc/ekaya-codegen/pkg/codegen"
	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
	"github.com/ekaya-inc/ekaya-codegen/pkg/retry"
	"github.com/ekaya-inc/ekaya-codegen/pkg/services"
)

// GenerateResponse is the body of a successful generation.
type GenerateResponse struct {
	*models.GenerationResult
	FileName string `json:"fileName"`
}

// GenerationHandler exposes artifact generation and code completion.
type GenerationHandler struct {
	generation services.GenerationService
	retryCfg   *retry.Config
	auditor    *audit.SecurityAuditor
	logger     *zap.Logger
}

// NewGenerationHandler creates a generation handler. maxRetries bounds how
// often a completion that failed in transit is re-sent.
func NewGenerationHandler(generation services.GenerationService, maxRetries int, logger *zap.Logger) *GenerationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := retry.WithMaxRetries(maxRetries)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Warn("Retrying completion after transport failure",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.String("error", logging.SanitizeError(err)))
	}
	return &GenerationHandler{
		generation: generation,
		retryCfg:   cfg,
		auditor:    audit.NewSecurityAuditor(logger),
		logger:     logger,
	}
}

// RegisterRoutes registers the generation handler's routes on the given mux.
func (h *GenerationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/generate/model", h.GenerateModel)
	mux.HandleFunc("POST /api/generate/repository", h.GenerateRepository)
	mux.HandleFunc("POST /api/codegen", h.Complete)
}

// GenerateModel handles POST /api/generate/model.
func (h *GenerationHandler) GenerateModel(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, h.generation.GenerateModel)
}

// GenerateRepository handles POST /api/generate/repository.
func (h *GenerationHandler) GenerateRepository(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, h.generation.GenerateRepository)
}

func (h *GenerationHandler) generate(
	w http.ResponseWriter,
	r *http.Request,
	run func(context.Context, models.GenerationRequest) (*models.GenerationResult, error),
) {
	var req models.GenerationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	if err := screenTableName(r, h.auditor, req.TableName); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	result, err := run(r.Context(), req)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, h.logger, GenerateResponse{
		GenerationResult: result,
		FileName:         codegen.ArtifactFileName(result.TableName, string(result.Kind)),
	})
}

// Complete handles POST /api/codegen. Transport failures are retried; every
// other failure is reported immediately.
func (h *GenerationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req models.CompletionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	result, err := retry.DoIfRetryable(r.Context(), h.retryCfg, func(ctx context.Context) (*models.CompletionResult, error) {
		return h.generation.Complete(ctx, req)
	})
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteSuccess(w, h.logger, result)
}

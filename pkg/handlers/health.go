package handlers

import (
	"net/http"
	"runtime"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-codegen/pkg/config"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
	"github.com/ekaya-inc/ekaya-codegen/pkg/services"
)

// PingResponse describes what this instance can do right now.
type PingResponse struct {
	Status      string          `json:"status"`
	Version     string          `json:"version"`
	Service     string          `json:"service"`
	GoVersion   string          `json:"go_version"`
	Environment string          `json:"environment"`
	Engines     []string        `json:"engines"`
	Provider    string          `json:"completion_provider"`
	Templates   map[string]bool `json:"templates"`
}

// HealthHandler serves liveness and readiness information.
type HealthHandler struct {
	cfg       *config.Config
	templates services.TemplateService
	logger    *zap.Logger
}

// NewHealthHandler creates a HealthHandler. templates may be nil, in which
// case /ping omits template presence.
func NewHealthHandler(cfg *config.Config, templates services.TemplateService, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{cfg: cfg, templates: templates, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping requests. Status is "degraded" while either
// template is missing, since generation cannot succeed until both exist.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	engines := make([]string, 0)
	for _, info := range datasource.RegisteredAdapters() {
		engines = append(engines, info.Type)
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "ekaya-codegen",
		GoVersion:   runtime.Version(),
		Environment: h.cfg.Env,
		Engines:     engines,
		Provider:    h.cfg.Completion.Provider,
	}

	if h.templates != nil {
		response.Templates = make(map[string]bool, 2)
		for _, kind := range []models.ArtifactKind{models.ArtifactModel, models.ArtifactRepository} {
			status, err := h.templates.Status(r.Context(), kind)
			if err != nil {
				h.logger.Warn("Failed to check template", zap.String("kind", string(kind)), zap.Error(err))
				response.Templates[string(kind)] = false
				response.Status = "degraded"
				continue
			}
			response.Templates[string(kind)] = status.Exists
			if !status.Exists {
				response.Status = "degraded"
			}
		}
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}

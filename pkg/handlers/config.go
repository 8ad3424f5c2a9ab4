package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
	"github.com/ekaya-inc/ekaya-codegen/pkg/services"
)

// ConfigHandler reads and writes the stored config record. Secrets are
// always masked in responses.
type ConfigHandler struct {
	stored services.StoredConfigService
	logger *zap.Logger
}

// NewConfigHandler creates a config handler.
func NewConfigHandler(stored services.StoredConfigService, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{stored: stored, logger: logger}
}

// RegisterRoutes registers the config handler's routes on the given mux.
func (h *ConfigHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/config", h.Get)
	mux.HandleFunc("PUT /api/config", h.Save)
}

// Get handles GET /api/config.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.stored.GetMasked(r.Context())
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteSuccess(w, h.logger, cfg)
}

// Save handles PUT /api/config.
func (h *ConfigHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.StoredConfig
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	saved, err := h.stored.Save(r.Context(), req)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteSuccess(w, h.logger, saved)
}

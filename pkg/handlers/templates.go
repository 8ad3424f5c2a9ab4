package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/services"
)

// TemplateHandler manages the uploaded example templates.
type TemplateHandler struct {
	templates services.TemplateService
	logger    *zap.Logger
}

// NewTemplateHandler creates a template handler.
func NewTemplateHandler(templates services.TemplateService, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger}
}

// RegisterRoutes registers the template handler's routes on the given mux.
func (h *TemplateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("PUT /api/templates/{kind}", h.Upload)
	mux.HandleFunc("GET /api/templates/{kind}", h.Get)
	mux.HandleFunc("GET /api/templates/{kind}/exists", h.Exists)
}

// Upload handles PUT /api/templates/{kind}. The body is either the raw
// template text or a multipart form with a "file" part.
func (h *TemplateHandler) Upload(w http.ResponseWriter, r *http.Request) {
	kind, err := parseArtifactKind(r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	content, err := readTemplateBody(w, r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	if strings.TrimSpace(content) == "" {
		WriteError(w, r, h.logger, apperrors.InvalidInput("template is empty"))
		return
	}

	if err := h.templates.Upload(r.Context(), kind, content); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	status, err := h.templates.Status(r.Context(), kind)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteSuccess(w, h.logger, status)
}

// Get handles GET /api/templates/{kind}.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, err := parseArtifactKind(r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	content, err := h.templates.Get(r.Context(), kind)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteSuccess(w, h.logger, map[string]string{"kind": string(kind), "content": content})
}

// Exists handles GET /api/templates/{kind}/exists.
func (h *TemplateHandler) Exists(w http.ResponseWriter, r *http.Request) {
	kind, err := parseArtifactKind(r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	status, err := h.templates.Status(r.Context(), kind)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteSuccess(w, h.logger, status)
}

func readTemplateBody(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var src io.Reader = r.Body
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", apperrors.InvalidInput("multipart upload must include a \"file\" part")
		}
		defer file.Close()
		src = file
	}

	data, err := io.ReadAll(src)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", apperrors.InvalidInput(fmt.Sprintf("template exceeds %d bytes", tooLarge.Limit))
		}
		return "", fmt.Errorf("read template body: %w", err)
	}
	return string(data), nil
}

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/audit"
	"github.com/ekaya-inc/ekaya-codegen/pkg/services"
)

// ConnectionRequest carries the connection string for schema operations.
// A blank connection string selects the stored one.
type ConnectionRequest struct {
	ConnectionString string `json:"connectionString"`
}

// TestConnectionResponse reports whether the database answered.
type TestConnectionResponse struct {
	Success bool `json:"success"`
}

// SchemaHandler exposes schema inspection over HTTP.
type SchemaHandler struct {
	schema  services.SchemaService
	auditor *audit.SecurityAuditor
	logger  *zap.Logger
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(schema services.SchemaService, logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{schema: schema, auditor: audit.NewSecurityAuditor(logger), logger: logger}
}

// RegisterRoutes registers the schema handler's routes on the given mux.
func (h *SchemaHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/test-connection", h.TestConnection)
	mux.HandleFunc("POST /api/tables", h.ListTables)
	mux.HandleFunc("POST /api/tables/{table}/columns", h.GetColumns)
	mux.HandleFunc("POST /api/tables/{table}/metadata", h.GetTableMetadata)
}

// TestConnection handles POST /api/test-connection.
// Always answers 200; failure is reported as success=false.
func (h *SchemaHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	ok := h.schema.TestConnection(r.Context(), req.ConnectionString)
	WriteSuccess(w, h.logger, TestConnectionResponse{Success: ok})
}

// ListTables handles POST /api/tables.
func (h *SchemaHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	tables, err := h.schema.ListTables(r.Context(), req.ConnectionString)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteSuccess(w, h.logger, tables)
}

// GetColumns handles POST /api/tables/{table}/columns.
func (h *SchemaHandler) GetColumns(w http.ResponseWriter, r *http.Request) {
	table, err := parseTableName(r, h.auditor)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	var req ConnectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	columns, err := h.schema.GetColumns(r.Context(), table, req.ConnectionString)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteSuccess(w, h.logger, columns)
}

// GetTableMetadata handles POST /api/tables/{table}/metadata.
func (h *SchemaHandler) GetTableMetadata(w http.ResponseWriter, r *http.Request) {
	table, err := parseTableName(r, h.auditor)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	var req ConnectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	meta, err := h.schema.GetTableMetadata(r.Context(), table, req.ConnectionString)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteSuccess(w, h.logger, meta)
}

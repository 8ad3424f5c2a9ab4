package handlers

import (
	"net/http"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/audit"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
)

// screenTableName rejects table names that are malformed or read as SQL.
// The inspector binds the name as a parameter regardless.
func screenTableName(r *http.Request, auditor *audit.SecurityAuditor, table string) error {
	return auditor.CheckIdentifier(r.Context(), "http", r.RemoteAddr, "table name", table)
}

// parseTableName extracts and screens the {table} path value.
func parseTableName(r *http.Request, auditor *audit.SecurityAuditor) (string, error) {
	table := r.PathValue("table")
	if err := screenTableName(r, auditor, table); err != nil {
		return "", err
	}
	return table, nil
}

// parseArtifactKind extracts the {kind} path value.
func parseArtifactKind(r *http.Request) (models.ArtifactKind, error) {
	kind := models.ArtifactKind(r.PathValue("kind"))
	if !kind.IsValid() {
		return "", apperrors.InvalidInput(`template kind must be "model" or "repository"`)
	}
	return kind, nil
}

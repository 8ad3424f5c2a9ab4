package models

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// ArtifactKind selects which template and metadata set a generation uses.
type ArtifactKind string

const (
	ArtifactModel      ArtifactKind = "model"
	ArtifactRepository ArtifactKind = "repository"
)

// IsValid reports whether k names a known artifact kind.
func (k ArtifactKind) IsValid() bool {
	return k == ArtifactModel || k == ArtifactRepository
}

// GenerationRequest is the context needed to produce an artifact.
// ConnectionString is a credential-bearing secret and is never logged.
type GenerationRequest struct {
	TableName        string `json:"tableName"`
	ConnectionString string `json:"connectionString,omitempty"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler and omits the connection string.
func (r GenerationRequest) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("table", r.TableName)
	enc.AddBool("has_connection_string", r.ConnectionString != "")
	return nil
}

// GenerationResult is an opaque generated artifact.
type GenerationResult struct {
	Kind        ArtifactKind `json:"kind"`
	TableName   string       `json:"tableName"`
	EntityName  string       `json:"entityName"`
	Content     string       `json:"content"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// CompletionRequest asks the completion endpoint to answer a single prompt.
// A blank APIKey falls back to the stored or process-wide default key.
type CompletionRequest struct {
	Prompt string `json:"prompt"`
	APIKey string `json:"apiKey,omitempty"`
}

// CompletionResult is the accumulated text of a streamed completion.
type CompletionResult struct {
	Content string `json:"content"`
}

// TemplateStatus reports whether a template has been uploaded for a kind.
type TemplateStatus struct {
	Kind   ArtifactKind `json:"kind"`
	Exists bool         `json:"exists"`
	Path   string       `json:"path"`
}

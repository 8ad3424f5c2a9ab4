package repositories

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/codegen"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
)

// UploadsDir is the subdirectory of the data dir that holds templates.
const UploadsDir = "uploads"

// TemplateRepository stores the model and repository example templates.
// Template content is opaque text and is stored verbatim.
type TemplateRepository interface {
	// Load returns the template for kind. A missing template is a
	// TemplateMissing error.
	Load(ctx context.Context, kind models.ArtifactKind) (string, error)

	// Save replaces the template for kind.
	Save(ctx context.Context, kind models.ArtifactKind, content string) error

	// Exists reports whether a template for kind has been uploaded.
	Exists(ctx context.Context, kind models.ArtifactKind) (bool, error)

	// Path returns where the template for kind lives.
	Path(kind models.ArtifactKind) string
}

// fileTemplateRepository keeps one file per kind under <dataDir>/uploads.
type fileTemplateRepository struct {
	dir    string
	logger *zap.Logger
}

// NewTemplateRepository creates a file-backed template repository.
func NewTemplateRepository(dataDir string, logger *zap.Logger) TemplateRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fileTemplateRepository{
		dir:    filepath.Join(dataDir, UploadsDir),
		logger: logger.Named("templates"),
	}
}

func (r *fileTemplateRepository) Path(kind models.ArtifactKind) string {
	return filepath.Join(r.dir, codegen.TemplateName(kind))
}

func (r *fileTemplateRepository) Load(ctx context.Context, kind models.ArtifactKind) (string, error) {
	if !kind.IsValid() {
		return "", apperrors.InvalidInput(fmt.Sprintf("unknown template kind %q", kind))
	}

	data, err := os.ReadFile(r.Path(kind))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("Template not found", zap.String("kind", string(kind)))
			return "", apperrors.TemplateMissing(codegen.TemplateName(kind), err)
		}
		return "", fmt.Errorf("read %s: %w", codegen.TemplateName(kind), err)
	}
	return string(data), nil
}

func (r *fileTemplateRepository) Save(ctx context.Context, kind models.ArtifactKind, content string) error {
	if !kind.IsValid() {
		return apperrors.InvalidInput(fmt.Sprintf("unknown template kind %q", kind))
	}
	if err := writeFileAtomic(r.Path(kind), []byte(content), 0o640); err != nil {
		return err
	}
	r.logger.Info("Template saved",
		zap.String("kind", string(kind)),
		zap.Int("bytes", len(content)))
	return nil
}

func (r *fileTemplateRepository) Exists(ctx context.Context, kind models.ArtifactKind) (bool, error) {
	if !kind.IsValid() {
		return false, apperrors.InvalidInput(fmt.Sprintf("unknown template kind %q", kind))
	}
	info, err := os.Stat(r.Path(kind))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", codegen.TemplateName(kind), err)
	}
	return info.Mode().IsRegular(), nil
}

var _ TemplateRepository = (*fileTemplateRepository)(nil)

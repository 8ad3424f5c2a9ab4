package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
)

func TestTemplateRepository_SaveLoadExists(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	repo := NewTemplateRepository(dataDir, zap.NewNop())

	exists, err := repo.Exists(ctx, models.ArtifactModel)
	require.NoError(t, err)
	assert.False(t, exists)

	content := "public class Example\n{\n\tpublic int Id { get; set; }\n}\n"
	require.NoError(t, repo.Save(ctx, models.ArtifactModel, content))

	exists, err = repo.Exists(ctx, models.ArtifactModel)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repo.Load(ctx, models.ArtifactModel)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	assert.FileExists(t, filepath.Join(dataDir, "uploads", "model.txt"))
	assert.NoFileExists(t, filepath.Join(dataDir, "uploads", "repository.txt"))
}

func TestTemplateRepository_MissingIsTemplateMissing(t *testing.T) {
	repo := NewTemplateRepository(t.TempDir(), nil)

	_, err := repo.Load(context.Background(), models.ArtifactRepository)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindTemplateMissing, apperrors.KindOf(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "repository.txt")
}

func TestTemplateRepository_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewTemplateRepository(t.TempDir(), nil)

	require.NoError(t, repo.Save(ctx, models.ArtifactRepository, "first version that is longer"))
	require.NoError(t, repo.Save(ctx, models.ArtifactRepository, "second"))

	got, err := repo.Load(ctx, models.ArtifactRepository)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	entries, err := os.ReadDir(filepath.Dir(repo.Path(models.ArtifactRepository)))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestTemplateRepository_UnknownKind(t *testing.T) {
	ctx := context.Background()
	repo := NewTemplateRepository(t.TempDir(), nil)

	_, err := repo.Load(ctx, models.ArtifactKind("../etc/passwd"))
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))

	err = repo.Save(ctx, models.ArtifactKind("controller"), "x")
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))

	_, err = repo.Exists(ctx, models.ArtifactKind(""))
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}

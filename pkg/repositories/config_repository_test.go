package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-codegen/pkg/crypto"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
)

const storedConn = "Server=db01;Database=Sales;User Id=sa;Password=hunter2;"

func TestConfigRepository_GetWhenNeverSaved(t *testing.T) {
	repo := NewConfigRepository(t.TempDir(), nil, nil)

	cfg, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.StoredConfig{}, cfg)
}

func TestConfigRepository_PlaintextRoundTrip(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	repo := NewConfigRepository(dataDir, nil, nil)

	want := &models.StoredConfig{ConnectionString: storedConn, OpenAIAPIKey: "sk-test-1234567890"}
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := os.ReadFile(filepath.Join(dataDir, ConfigFileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"connectionString"`)
	assert.Contains(t, string(raw), `"openAiKey"`)

	info, err := os.Stat(filepath.Join(dataDir, ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigRepository_SealedAtRest(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	box, err := crypto.NewSecretBox("unit-test-passphrase")
	require.NoError(t, err)
	repo := NewConfigRepository(dataDir, box, nil)

	want := &models.StoredConfig{ConnectionString: storedConn, OpenAIAPIKey: "sk-test-1234567890"}
	require.NoError(t, repo.Save(ctx, want))

	raw, err := os.ReadFile(filepath.Join(dataDir, ConfigFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")
	assert.NotContains(t, string(raw), "sk-test")

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = NewConfigRepository(dataDir, nil, nil).Get(ctx)
	assert.ErrorIs(t, err, crypto.ErrNoKeyForValue)
}

func TestConfigRepository_ReadsLegacyPlaintextWithKey(t *testing.T) {
	dataDir := t.TempDir()
	legacy := `{"connectionString":"Server=old;Database=Legacy;","openAiKey":""}`
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, ConfigFileName), []byte(legacy), 0o600))

	box, _ := crypto.NewSecretBox("unit-test-passphrase")
	got, err := NewConfigRepository(dataDir, box, nil).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Server=old;Database=Legacy;", got.ConnectionString)
}

func TestConfigRepository_CorruptFile(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, ConfigFileName), []byte("{nope"), 0o600))

	_, err := NewConfigRepository(dataDir, nil, nil).Get(context.Background())
	assert.Error(t, err)
}

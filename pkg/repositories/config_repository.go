package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/crypto"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
)

// ConfigFileName is the stored config record's file name inside the data dir.
const ConfigFileName = "config.json"

// ConfigRepository persists the user-editable StoredConfig record.
type ConfigRepository interface {
	// Get returns the stored record. A record that was never saved is
	// returned empty, not as an error.
	Get(ctx context.Context) (*models.StoredConfig, error)

	// Save replaces the stored record.
	Save(ctx context.Context, cfg *models.StoredConfig) error
}

// fileConfigRepository stores the record as JSON. When a SecretBox is
// supplied both fields are sealed on disk.
type fileConfigRepository struct {
	path   string
	box    *crypto.SecretBox
	logger *zap.Logger
}

// NewConfigRepository creates a file-backed config repository. box may be nil.
func NewConfigRepository(dataDir string, box *crypto.SecretBox, logger *zap.Logger) ConfigRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fileConfigRepository{
		path:   filepath.Join(dataDir, ConfigFileName),
		box:    box,
		logger: logger.Named("stored-config"),
	}
}

func (r *fileConfigRepository) Get(ctx context.Context) (*models.StoredConfig, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &models.StoredConfig{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", ConfigFileName, err)
	}

	var stored models.StoredConfig
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigFileName, err)
	}

	if stored.ConnectionString, err = r.box.Open(stored.ConnectionString); err != nil {
		return nil, fmt.Errorf("open stored connection string: %w", err)
	}
	if stored.OpenAIAPIKey, err = r.box.Open(stored.OpenAIAPIKey); err != nil {
		return nil, fmt.Errorf("open stored api key: %w", err)
	}
	return &stored, nil
}

func (r *fileConfigRepository) Save(ctx context.Context, cfg *models.StoredConfig) error {
	if cfg == nil {
		cfg = &models.StoredConfig{}
	}

	var sealed models.StoredConfig
	var err error
	if sealed.ConnectionString, err = r.box.Seal(cfg.ConnectionString); err != nil {
		return fmt.Errorf("seal connection string: %w", err)
	}
	if sealed.OpenAIAPIKey, err = r.box.Seal(cfg.OpenAIAPIKey); err != nil {
		return fmt.Errorf("seal api key: %w", err)
	}

	data, err := json.MarshalIndent(sealed, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", ConfigFileName, err)
	}
	if err := writeFileAtomic(r.path, data, 0o600); err != nil {
		return err
	}

	r.logger.Info("Stored config saved",
		zap.Bool("has_connection_string", cfg.ConnectionString != ""),
		zap.Bool("has_api_key", cfg.OpenAIAPIKey != ""),
		zap.Bool("sealed", r.box != nil))
	return nil
}

var _ ConfigRepository = (*fileConfigRepository)(nil)

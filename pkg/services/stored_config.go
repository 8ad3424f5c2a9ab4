package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
	"github.com/ekaya-inc/ekaya-codegen/pkg/repositories"
)

// StoredConfigService reads and writes the user-editable config record.
// Reads are always masked; secrets never leave the process in clear.
type StoredConfigService interface {
	GetMasked(ctx context.Context) (*models.StoredConfig, error)

	// Save replaces the record. A field that equals the masked form of the
	// current value keeps the current value, so a masked record read back
	// from GetMasked can be saved without destroying the secrets.
	Save(ctx context.Context, cfg models.StoredConfig) (*models.StoredConfig, error)
}

type storedConfigService struct {
	repo   repositories.ConfigRepository
	logger *zap.Logger
}

func NewStoredConfigService(repo repositories.ConfigRepository, logger *zap.Logger) StoredConfigService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &storedConfigService{repo: repo, logger: logger.Named("stored-config")}
}

func (s *storedConfigService) GetMasked(ctx context.Context) (*models.StoredConfig, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	masked := current.Masked()
	return &masked, nil
}

func (s *storedConfigService) Save(ctx context.Context, cfg models.StoredConfig) (*models.StoredConfig, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	currentMasked := current.Masked()

	next := cfg
	if cfg.ConnectionString != "" && cfg.ConnectionString == currentMasked.ConnectionString {
		next.ConnectionString = current.ConnectionString
	}
	if cfg.OpenAIAPIKey != "" && cfg.OpenAIAPIKey == currentMasked.OpenAIAPIKey {
		next.OpenAIAPIKey = current.OpenAIAPIKey
	}

	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, err
	}
	masked := next.Masked()
	return &masked, nil
}

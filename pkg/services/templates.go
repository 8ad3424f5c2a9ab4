package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
	"github.com/ekaya-inc/ekaya-codegen/pkg/repositories"
)

// TemplateService manages the uploaded example templates.
type TemplateService interface {
	Upload(ctx context.Context, kind models.ArtifactKind, content string) error
	Get(ctx context.Context, kind models.ArtifactKind) (string, error)
	Status(ctx context.Context, kind models.ArtifactKind) (*models.TemplateStatus, error)
}

type templateService struct {
	repo   repositories.TemplateRepository
	logger *zap.Logger
}

func NewTemplateService(repo repositories.TemplateRepository, logger *zap.Logger) TemplateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &templateService{repo: repo, logger: logger.Named("templates")}
}

func (s *templateService) Upload(ctx context.Context, kind models.ArtifactKind, content string) error {
	return s.repo.Save(ctx, kind, content)
}

func (s *templateService) Get(ctx context.Context, kind models.ArtifactKind) (string, error) {
	return s.repo.Load(ctx, kind)
}

func (s *templateService) Status(ctx context.Context, kind models.ArtifactKind) (*models.TemplateStatus, error) {
	exists, err := s.repo.Exists(ctx, kind)
	if err != nil {
		return nil, err
	}
	return &models.TemplateStatus{Kind: kind, Exists: exists, Path: s.repo.Path(kind)}, nil
}

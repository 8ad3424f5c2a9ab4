package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/codegen"
	"github.com/ekaya-inc/ekaya-codegen/pkg/llm"
	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
	"github.com/ekaya-inc/ekaya-codegen/pkg/repositories"
)

// GenerationService produces artifacts from templates plus live metadata and
// forwards free-form prompts to the completion client.
type GenerationService interface {
	// GenerateModel merges the model template with the table's columns.
	GenerateModel(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)

	// GenerateRepository merges the repository template with the table's
	// columns and primary keys.
	GenerateRepository(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)

	// Complete sends the prompt to the completion endpoint. A blank key falls
	// back to the stored key, then to the process default.
	Complete(ctx context.Context, req models.CompletionRequest) (*models.CompletionResult, error)
}

type generationDeps struct {
	inspector  datasource.SchemaInspector
	templates  repositories.TemplateRepository
	configRepo repositories.ConfigRepository
	completer  llm.Completer
	now        func() time.Time
	logger     *zap.Logger
}

type generationService struct {
	deps generationDeps
}

// GenerationOption customises a GenerationService.
type GenerationOption func(*generationDeps)

// WithClock replaces the clock used for the "// Generated:" header.
func WithClock(now func() time.Time) GenerationOption {
	return func(d *generationDeps) {
		d.now = now
	}
}

// NewGenerationService creates a generation service.
func NewGenerationService(
	inspector datasource.SchemaInspector,
	templates repositories.TemplateRepository,
	configRepo repositories.ConfigRepository,
	completer llm.Completer,
	logger *zap.Logger,
	opts ...GenerationOption,
) GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := generationDeps{
		inspector:  inspector,
		templates:  templates,
		configRepo: configRepo,
		completer:  completer,
		now:        time.Now,
		logger:     logger.Named("generation"),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &generationService{deps: deps}
}

func (s *generationService) GenerateModel(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	return s.generate(ctx, models.ArtifactModel, req)
}

func (s *generationService) GenerateRepository(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	return s.generate(ctx, models.ArtifactRepository, req)
}

func (s *generationService) generate(ctx context.Context, kind models.ArtifactKind, req models.GenerationRequest) (*models.GenerationResult, error) {
	logger := logging.WithContext(ctx, s.deps.logger)

	if strings.TrimSpace(req.TableName) == "" {
		return nil, apperrors.InvalidInput("table name is required")
	}

	connString, err := resolveConnectionString(ctx, s.deps.configRepo, req.ConnectionString)
	if err != nil {
		return nil, err
	}

	// The template is checked before touching the database so a missing
	// upload fails fast.
	template, err := s.deps.templates.Load(ctx, kind)
	if err != nil {
		return nil, err
	}

	columns, err := s.deps.inspector.GetColumns(ctx, req.TableName, connString)
	if err != nil {
		return nil, err
	}

	input := codegen.MergeInput{
		Kind:      kind,
		Template:  template,
		TableName: req.TableName,
		Columns:   columns,
	}
	if kind == models.ArtifactRepository {
		if input.PrimaryKeys, err = s.deps.inspector.GetPrimaryKeys(ctx, req.TableName, connString); err != nil {
			return nil, err
		}
	}
	input.GeneratedAt = s.deps.now()

	content := codegen.Merge(input)

	logger.Info("Artifact generated",
		zap.String("kind", string(kind)),
		zap.Object("request", req),
		zap.Int("columns", len(columns)),
		zap.Int("primary_keys", len(input.PrimaryKeys)),
		zap.Int("content_len", len(content)))

	return &models.GenerationResult{
		Kind:        kind,
		TableName:   req.TableName,
		EntityName:  codegen.EntityName(req.TableName),
		Content:     content,
		GeneratedAt: input.GeneratedAt,
	}, nil
}

func (s *generationService) Complete(ctx context.Context, req models.CompletionRequest) (*models.CompletionResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, apperrors.InvalidInput("prompt is required")
	}
	if s.deps.completer == nil {
		return nil, apperrors.ConfigMissing("no completion provider is configured")
	}

	apiKey := req.APIKey
	if apiKey == "" && s.deps.configRepo != nil {
		// An unreadable config leaves apiKey empty so the client's default key applies.
		stored, err := s.deps.configRepo.Get(ctx)
		if err != nil {
			logging.WithContext(ctx, s.deps.logger).Warn("Stored config unavailable, using default completion key",
				zap.String("error", logging.SanitizeError(err)))
		} else {
			apiKey = stored.OpenAIAPIKey
		}
	}

	content, err := s.deps.completer.Complete(ctx, req.Prompt, apiKey)
	if err != nil {
		return nil, err
	}
	return &models.CompletionResult{Content: content}, nil
}

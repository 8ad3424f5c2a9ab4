package cli

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-codegen/pkg/audit"
	"github.com/ekaya-inc/ekaya-codegen/pkg/config"
	"github.com/ekaya-inc/ekaya-codegen/pkg/crypto"
	"github.com/ekaya-inc/ekaya-codegen/pkg/llm"
	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
	"github.com/ekaya-inc/ekaya-codegen/pkg/repositories"
	"github.com/ekaya-inc/ekaya-codegen/pkg/services"
)

// app is the wired service graph shared by every command.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	schema     services.SchemaService
	generation services.GenerationService
	templates  services.TemplateService
	stored     services.StoredConfigService
	auditor    *audit.SecurityAuditor
}

func loadApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath, opts.version)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logger)
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	var box *crypto.SecretBox
	if cfg.SecretsKey != "" {
		var err error
		box, err = crypto.NewSecretBox(cfg.SecretsKey)
		if err != nil {
			return nil, fmt.Errorf("invalid secrets key: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	inspector := datasource.NewInspector(datasource.InspectorConfig{
		DefaultType:    cfg.Datasource.DefaultType,
		ConnectTimeout: cfg.Datasource.ConnectTimeout,
	}, logger)
	templateRepo := repositories.NewTemplateRepository(cfg.DataDir, logger)
	configRepo := repositories.NewConfigRepository(cfg.DataDir, box, logger)

	completer, err := llm.NewCompleter(cfg.Completion, nil, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		schema:     services.NewSchemaService(inspector, configRepo, logger),
		generation: services.NewGenerationService(inspector, templateRepo, configRepo, completer, logger),
		templates:  services.NewTemplateService(templateRepo, logger),
		stored:     services.NewStoredConfigService(configRepo, logger),
		auditor:    audit.NewSecurityAuditor(logger),
	}, nil
}

package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
	"github.com/ekaya-inc/ekaya-codegen/pkg/repositories"
)

// SchemaService exposes schema inspection to the transports. A blank
// connection string falls back to the stored config record.
type SchemaService interface {
	TestConnection(ctx context.Context, connString string) bool
	ListTables(ctx context.Context, connString string) ([]string, error)
	GetColumns(ctx context.Context, table, connString string) ([]models.ColumnInfo, error)

	// GetTableMetadata returns columns, primary keys and foreign keys of
	// table, each read over its own connection.
	GetTableMetadata(ctx context.Context, table, connString string) (*models.TableMetadata, error)
}

type schemaService struct {
	inspector  datasource.SchemaInspector
	configRepo repositories.ConfigRepository
	logger     *zap.Logger
}

// NewSchemaService creates a schema service. configRepo may be nil, in which
// case callers must always supply a connection string.
func NewSchemaService(inspector datasource.SchemaInspector, configRepo repositories.ConfigRepository, logger *zap.Logger) SchemaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &schemaService{
		inspector:  inspector,
		configRepo: configRepo,
		logger:     logger.Named("schema"),
	}
}

func (s *schemaService) TestConnection(ctx context.Context, connString string) bool {
	resolved, err := resolveConnectionString(ctx, s.configRepo, connString)
	if err != nil {
		return false
	}
	return s.inspector.TestConnection(ctx, resolved)
}

func (s *schemaService) ListTables(ctx context.Context, connString string) ([]string, error) {
	resolved, err := resolveConnectionString(ctx, s.configRepo, connString)
	if err != nil {
		return nil, err
	}
	return s.inspector.ListTables(ctx, resolved)
}

func (s *schemaService) GetColumns(ctx context.Context, table, connString string) ([]models.ColumnInfo, error) {
	if table == "" {
		return nil, apperrors.InvalidInput("table name is required")
	}
	resolved, err := resolveConnectionString(ctx, s.configRepo, connString)
	if err != nil {
		return nil, err
	}
	return s.inspector.GetColumns(ctx, table, resolved)
}

func (s *schemaService) GetTableMetadata(ctx context.Context, table, connString string) (*models.TableMetadata, error) {
	if table == "" {
		return nil, apperrors.InvalidInput("table name is required")
	}
	resolved, err := resolveConnectionString(ctx, s.configRepo, connString)
	if err != nil {
		return nil, err
	}

	columns, err := s.inspector.GetColumns(ctx, table, resolved)
	if err != nil {
		return nil, err
	}
	primaryKeys, err := s.inspector.GetPrimaryKeys(ctx, table, resolved)
	if err != nil {
		return nil, err
	}
	foreignKeys, err := s.inspector.GetForeignKeys(ctx, table, resolved)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Table metadata read",
		zap.String("table", table),
		zap.Int("columns", len(columns)),
		zap.Int("primary_keys", len(primaryKeys)),
		zap.Int("foreign_keys", len(foreignKeys)))

	return &models.TableMetadata{
		TableName:   table,
		Columns:     columns,
		PrimaryKeys: primaryKeys,
		ForeignKeys: foreignKeys,
	}, nil
}

package handlers

import (
	"context"
	"sync"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
)

// mockSchemaService is a configurable SchemaService.
type mockSchemaService struct {
	reachable bool
	tables    []string
	columns   []models.ColumnInfo
	meta      *models.TableMetadata
	err       error

	gotTable string
	gotConn  string
	calls    int
}

func (m *mockSchemaService) TestConnection(ctx context.Context, connString string) bool {
	m.calls++
	m.gotConn = connString
	return m.reachable
}

func (m *mockSchemaService) ListTables(ctx context.Context, connString string) ([]string, error) {
	m.calls++
	m.gotConn = connString
	return m.tables, m.err
}

func (m *mockSchemaService) GetColumns(ctx context.Context, table, connString string) ([]models.ColumnInfo, error) {
	m.calls++
	m.gotTable, m.gotConn = table, connString
	return m.columns, m.err
}

func (m *mockSchemaService) GetTableMetadata(ctx context.Context, table, connString string) (*models.TableMetadata, error) {
	m.calls++
	m.gotTable, m.gotConn = table, connString
	return m.meta, m.err
}

// mockGenerationService returns canned results. Complete fails with the
// queued errors in order before succeeding.
type mockGenerationService struct {
	mu          sync.Mutex
	result      *models.GenerationResult
	err         error
	completeErr []error
	requests    []models.GenerationRequest
	completions []models.CompletionRequest
}

func (m *mockGenerationService) GenerateModel(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	return m.generate(models.ArtifactModel, req)
}

func (m *mockGenerationService) GenerateRepository(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	return m.generate(models.ArtifactRepository, req)
}

func (m *mockGenerationService) generate(kind models.ArtifactKind, req models.GenerationRequest) (*models.GenerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &models.GenerationResult{Kind: kind, TableName: req.TableName, EntityName: "Order", Content: "class Order {}"}, nil
}

func (m *mockGenerationService) Complete(ctx context.Context, req models.CompletionRequest) (*models.CompletionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions = append(m.completions, req)
	if len(m.completeErr) > 0 {
		err := m.completeErr[0]
		m.completeErr = m.completeErr[1:]
		return nil, err
	}
	return &models.CompletionResult{Content: "done"}, nil
}

// mockTemplateService keeps templates in memory.
type mockTemplateService struct {
	templates map[models.ArtifactKind]string
	err       error
}

func newMockTemplateService() *mockTemplateService {
	return &mockTemplateService{templates: map[models.ArtifactKind]string{}}
}

func (m *mockTemplateService) Upload(ctx context.Context, kind models.ArtifactKind, content string) error {
	if m.err != nil {
		return m.err
	}
	m.templates[kind] = content
	return nil
}

func (m *mockTemplateService) Get(ctx context.Context, kind models.ArtifactKind) (string, error) {
	content, ok := m.templates[kind]
	if !ok {
		return "", apperrors.TemplateMissing(string(kind)+".txt", nil)
	}
	return content, nil
}

func (m *mockTemplateService) Status(ctx context.Context, kind models.ArtifactKind) (*models.TemplateStatus, error) {
	_, ok := m.templates[kind]
	return &models.TemplateStatus{Kind: kind, Exists: ok, Path: "uploads/" + string(kind) + ".txt"}, nil
}

// mockStoredConfigService records the last saved record.
type mockStoredConfigService struct {
	current models.StoredConfig
	saved   *models.StoredConfig
	err     error
}

func (m *mockStoredConfigService) GetMasked(ctx context.Context) (*models.StoredConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	masked := m.current.Masked()
	return &masked, nil
}

func (m *mockStoredConfigService) Save(ctx context.Context, cfg models.StoredConfig) (*models.StoredConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.saved = &cfg
	m.current = cfg
	masked := cfg.Masked()
	return &masked, nil
}

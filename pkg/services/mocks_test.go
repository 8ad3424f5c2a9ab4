package services

import (
	"context"
	"sync"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
)

// mockInspector is a configurable SchemaInspector. Every call records the
// connection string it was given.
type mockInspector struct {
	mu          sync.Mutex
	connStrings []string

	tables      []string
	columns     []models.ColumnInfo
	primaryKeys []string
	foreignKeys []models.ForeignKeyInfo
	err         error
	reachable   bool
}

func (m *mockInspector) record(connString string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connStrings = append(m.connStrings, connString)
}

func (m *mockInspector) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.connStrings...)
}

func (m *mockInspector) TestConnection(ctx context.Context, connString string) bool {
	m.record(connString)
	return m.reachable
}

func (m *mockInspector) ListTables(ctx context.Context, connString string) ([]string, error) {
	m.record(connString)
	return m.tables, m.err
}

func (m *mockInspector) GetColumns(ctx context.Context, table, connString string) ([]models.ColumnInfo, error) {
	m.record(connString)
	return m.columns, m.err
}

func (m *mockInspector) GetPrimaryKeys(ctx context.Context, table, connString string) ([]string, error) {
	m.record(connString)
	return m.primaryKeys, m.err
}

func (m *mockInspector) GetForeignKeys(ctx context.Context, table, connString string) ([]models.ForeignKeyInfo, error) {
	m.record(connString)
	return m.foreignKeys, m.err
}

// memoryTemplates is an in-memory TemplateRepository.
type memoryTemplates map[models.ArtifactKind]string

func (m memoryTemplates) Load(ctx context.Context, kind models.ArtifactKind) (string, error) {
	content, ok := m[kind]
	if !ok {
		return "", apperrors.TemplateMissing(string(kind)+".txt", nil)
	}
	return content, nil
}

func (m memoryTemplates) Save(ctx context.Context, kind models.ArtifactKind, content string) error {
	m[kind] = content
	return nil
}

func (m memoryTemplates) Exists(ctx context.Context, kind models.ArtifactKind) (bool, error) {
	_, ok := m[kind]
	return ok, nil
}

func (m memoryTemplates) Path(kind models.ArtifactKind) string {
	return "mem://" + string(kind)
}

// memoryConfig is an in-memory ConfigRepository.
type memoryConfig struct {
	stored models.StoredConfig
	err    error
	saves  int
}

func (m *memoryConfig) Get(ctx context.Context) (*models.StoredConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	c := m.stored
	return &c, nil
}

func (m *memoryConfig) Save(ctx context.Context, cfg *models.StoredConfig) error {
	m.saves++
	m.stored = *cfg
	return nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource"
	_ "github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource/sqlite"
	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/llm"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
	"github.com/ekaya-inc/ekaya-codegen/pkg/repositories"
	"github.com/ekaya-inc/ekaya-codegen/pkg/testhelpers"
)

var fixedNow = time.Date(2026, 10, 18, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func ordersInspector() *mockInspector {
	return &mockInspector{
		columns: []models.ColumnInfo{
			{Name: "Id", DataType: "int", OrdinalPosition: 1},
			{Name: "CustomerId", DataType: "int", OrdinalPosition: 2},
			{Name: "Total", DataType: "decimal", OrdinalPosition: 3, IsNullable: true},
		},
		primaryKeys: []string{"Id"},
	}
}

func TestGenerationService_GenerateRepository_OrdersScenario(t *testing.T) {
	inspector := ordersInspector()
	svc := NewGenerationService(inspector,
		memoryTemplates{models.ArtifactRepository: "// TEMPLATE"},
		&memoryConfig{}, nil, zap.NewNop(), WithClock(fixedClock))

	result, err := svc.GenerateRepository(context.Background(), models.GenerationRequest{
		TableName:        "Orders",
		ConnectionString: "Server=db;Database=Sales;",
	})
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"// Repository for table: Orders",
		"// Generated: 2026-10-18 14:30:00",
		"",
		"// Example from repository.txt:",
		"// TEMPLATE",
		"",
		"// Table Metadata:",
		"// Primary Keys:",
		"// - Id",
		"// Columns:",
		"// - Id (int)",
		"// - CustomerId (int)",
		"// - Total (decimal)",
	}, "\n")+"\n", result.Content)
	assert.Equal(t, models.ArtifactRepository, result.Kind)
	assert.Equal(t, "Order", result.EntityName)
	assert.Equal(t, fixedNow, result.GeneratedAt)
	assert.Len(t, inspector.calls(), 2, "columns and primary keys each use their own call")
}

func TestGenerationService_GenerateModel_SkipsPrimaryKeys(t *testing.T) {
	inspector := ordersInspector()
	svc := NewGenerationService(inspector,
		memoryTemplates{models.ArtifactModel: "class Example {}"},
		nil, nil, nil, WithClock(fixedClock))

	result, err := svc.GenerateModel(context.Background(), models.GenerationRequest{TableName: "Orders", ConnectionString: "Server=db;"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Content, "// Table: Orders\n// Generated: 2026-10-18 14:30:00\n"))
	assert.NotContains(t, result.Content, "Primary Keys")
	assert.Len(t, inspector.calls(), 1)
}

func TestGenerationService_FallsBackToStoredConnectionString(t *testing.T) {
	inspector := ordersInspector()
	stored := &memoryConfig{stored: models.StoredConfig{ConnectionString: "Server=stored;Database=Sales;"}}
	svc := NewGenerationService(inspector, memoryTemplates{models.ArtifactModel: "x"}, stored, nil, nil)

	_, err := svc.GenerateModel(context.Background(), models.GenerationRequest{TableName: "Orders"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Server=stored;Database=Sales;"}, inspector.calls())
}

func TestGenerationService_NoConnectionStringAnywhere(t *testing.T) {
	inspector := ordersInspector()
	svc := NewGenerationService(inspector, memoryTemplates{models.ArtifactRepository: "x"}, &memoryConfig{}, nil, nil)

	_, err := svc.GenerateRepository(context.Background(), models.GenerationRequest{TableName: "Orders", ConnectionString: "   "})
	require.Error(t, err)

	assert.Equal(t, apperrors.KindConfigMissing, apperrors.KindOf(err))
	assert.Empty(t, inspector.calls())
}

func TestGenerationService_TemplateMissingBeforeDatabase(t *testing.T) {
	inspector := ordersInspector()
	svc := NewGenerationService(inspector, memoryTemplates{}, nil, nil, nil)

	_, err := svc.GenerateModel(context.Background(), models.GenerationRequest{TableName: "Orders", ConnectionString: "Server=db;"})
	require.Error(t, err)

	assert.ErrorIs(t, err, apperrors.ErrTemplateMissing)
	assert.Empty(t, inspector.calls(), "the database is not contacted without a template")
}

func TestGenerationService_InspectorErrorKeepsKind(t *testing.T) {
	inspector := &mockInspector{err: apperrors.Connection("failed to connect", errors.New("login failed"))}
	svc := NewGenerationService(inspector, memoryTemplates{models.ArtifactRepository: "x"}, nil, nil, nil)

	_, err := svc.GenerateRepository(context.Background(), models.GenerationRequest{TableName: "Orders", ConnectionString: "Server=db;"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConnection, apperrors.KindOf(err))
}

func TestGenerationService_BlankTableName(t *testing.T) {
	svc := NewGenerationService(ordersInspector(), memoryTemplates{}, nil, nil, nil)

	_, err := svc.GenerateModel(context.Background(), models.GenerationRequest{ConnectionString: "Server=db;"})
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}

func TestGenerationService_GenerateRepository_SQLiteFixture(t *testing.T) {
	connString := testhelpers.NewSQLiteFixture(t, "")
	templates := repositories.NewTemplateRepository(t.TempDir(), nil)
	require.NoError(t, templates.Save(context.Background(), models.ArtifactRepository, "// TEMPLATE"))

	inspector := datasource.NewInspector(datasource.InspectorConfig{DefaultType: "sqlserver"}, nil)
	svc := NewGenerationService(inspector, templates, nil, nil, nil, WithClock(fixedClock))

	result, err := svc.GenerateRepository(context.Background(), models.GenerationRequest{TableName: "Orders", ConnectionString: connString})
	require.NoError(t, err)

	assert.Contains(t, result.Content, "// Primary Keys:\n// - Id\n// Columns:\n// - Id (INT)\n// - CustomerId (INT)\n// - Total (DECIMAL(10,2))\n")
}

func TestGenerationService_Complete_KeyFallback(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		stored    string
		wantKey   string
	}{
		{name: "request key wins", requested: "req-key", stored: "stored-key", wantKey: "req-key"},
		{name: "stored key when request blank", stored: "stored-key", wantKey: "stored-key"},
		{name: "blank lets client default apply", wantKey: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := llm.NewMockCompleter()
			completer.CompleteFunc = func(ctx context.Context, prompt, apiKey string) (string, error) {
				return "generated code", nil
			}
			svc := NewGenerationService(nil, nil, &memoryConfig{stored: models.StoredConfig{OpenAIAPIKey: tt.stored}}, completer, nil)

			result, err := svc.Complete(context.Background(), models.CompletionRequest{Prompt: "write code", APIKey: tt.requested})
			require.NoError(t, err)

			assert.Equal(t, "generated code", result.Content)
			calls := completer.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantKey, calls[0].APIKey)
			assert.Equal(t, "write code", calls[0].Prompt)
		})
	}
}

func TestGenerationService_Complete_UnreadableConfigUsesDefaultKey(t *testing.T) {
	completer := llm.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, prompt, apiKey string) (string, error) {
		return "generated code", nil
	}
	core, logs := observer.New(zapcore.WarnLevel)
	configRepo := &memoryConfig{err: errors.New("decode config.json: Password=correct horse battery;")}
	svc := NewGenerationService(nil, nil, configRepo, completer, zap.New(core))

	result, err := svc.Complete(context.Background(), models.CompletionRequest{Prompt: "write code"})
	require.NoError(t, err)
	assert.Equal(t, "generated code", result.Content)

	calls := completer.Calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].APIKey)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	msg := entries[0].ContextMap()["error"].(string)
	assert.Contains(t, msg, "decode config.json")
	assert.NotContains(t, msg, "horse")
}

func TestGenerationService_Complete_PropagatesKinds(t *testing.T) {
	completer := llm.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, prompt, apiKey string) (string, error) {
		return "", apperrors.Transport("completion stream interrupted", context.Canceled)
	}
	svc := NewGenerationService(nil, nil, nil, completer, nil)

	result, err := svc.Complete(context.Background(), models.CompletionRequest{Prompt: "p"})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, apperrors.KindTransport, apperrors.KindOf(err))
}

func TestGenerationService_Complete_Validation(t *testing.T) {
	svc := NewGenerationService(nil, nil, nil, nil, nil)

	_, err := svc.Complete(context.Background(), models.CompletionRequest{Prompt: " "})
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))

	_, err = svc.Complete(context.Background(), models.CompletionRequest{Prompt: "p"})
	assert.Equal(t, apperrors.KindConfigMissing, apperrors.KindOf(err))
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
)

func TestConfigHandler_GetMasksSecrets(t *testing.T) {
	svc := &mockStoredConfigService{current: models.StoredConfig{
		ConnectionString: "Server=db;User Id=sa;Password=hunter2",
		OpenAIAPIKey:     "sk-live-1234567890abcd",
	}}
	mux := http.NewServeMux()
	NewConfigHandler(svc, zap.NewNop()).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.NotContains(t, rec.Body.String(), "sk-live-1234567890abcd")

	var cfg models.StoredConfig
	decodeEnvelope(t, rec, &cfg)
	assert.True(t, strings.HasSuffix(cfg.OpenAIAPIKey, "abcd"))
}

func TestConfigHandler_Save(t *testing.T) {
	svc := &mockStoredConfigService{}
	mux := http.NewServeMux()
	NewConfigHandler(svc, zap.NewNop()).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/config",
		strings.NewReader(`{"connectionString":"Server=db;Password=hunter2","openAiKey":"sk-1234567890"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.saved)
	assert.Equal(t, "sk-1234567890", svc.saved.OpenAIAPIKey)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestConfigHandler_SaveRejectsInvalidJSON(t *testing.T) {
	svc := &mockStoredConfigService{}
	mux := http.NewServeMux()
	NewConfigHandler(svc, zap.NewNop()).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/config", strings.NewReader(`{"connectionString":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.saved)
}

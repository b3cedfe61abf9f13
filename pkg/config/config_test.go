package config_test

import (
	"testing"
	"time"

	"github.com/munidigital/tramite-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("intake-service")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, int64(20<<20), cfg.Intake.MaxFileSizeBytes)
	assert.Equal(t, "Mesa de Partes", cfg.Intake.DefaultArea)
	assert.Equal(t, "Media", cfg.Intake.DefaultPriority)
	assert.Contains(t, cfg.Intake.AllowedExtensions, "pdf")
	assert.Equal(t, "excel", cfg.RowStore.Backend)
	assert.Equal(t, "Expedientes", cfg.RowStore.CasesTable)
	assert.Equal(t, 5*time.Minute, cfg.Directory.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.Reasoning.Timeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TRAMITE_SERVER_PORT", "9090")
	t.Setenv("TRAMITE_ROWSTORE_BACKEND", "memory")
	t.Setenv("TRAMITE_REASONING_API_KEY", "test-key")

	cfg, err := config.Load("intake-service")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.RowStore.Backend)
	assert.True(t, cfg.Reasoning.Enabled())
}

func TestReasoningConfig_DisabledWithoutKey(t *testing.T) {
	cfg, err := config.Load("intake-service")
	require.NoError(t, err)

	assert.False(t, cfg.Reasoning.Enabled())
}

func TestLoadWithValidation_RejectsMemoryInProduction(t *testing.T) {
	t.Setenv("TRAMITE_SERVER_ENVIRONMENT", "production")
	t.Setenv("TRAMITE_ROWSTORE_BACKEND", "memory")

	_, err := config.LoadWithValidation("intake-service")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROWSTORE_BACKEND")
}

func TestLoadWithValidation_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("TRAMITE_ROWSTORE_BACKEND", "mongodb")

	_, err := config.LoadWithValidation("intake-service")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown row store backend")
}

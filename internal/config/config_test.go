package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	t.Setenv("ANALYSIS_TIMEOUT", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "")

	cfg := Load()

	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 60*time.Second, cfg.Analysis.Timeout)
	assert.Equal(t, 1, cfg.Worker.RetryMaxAttempts)
	assert.Equal(t, int64(10485760), cfg.Storage.MaxFileSize)
}

func TestLoad_FallsBackToLegacyAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")

	cfg := Load()

	assert.Equal(t, "legacy-key", cfg.Gemini.APIKey)
}

func TestLoad_ParsesOverrides(t *testing.T) {
	t.Setenv("ANALYSIS_TIMEOUT", "15s")
	t.Setenv("QDRANT_ENABLED", "false")
	t.Setenv("ANALYSIS_TEMPERATURE", "0.7")

	cfg := Load()

	assert.Equal(t, 15*time.Second, cfg.Analysis.Timeout)
	assert.False(t, cfg.Qdrant.Enabled)
	assert.InDelta(t, 0.7, cfg.Analysis.Temperature, 0.0001)
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := &Config{
		Worker:   WorkerConfig{Concurrency: 1},
		Analysis: AnalysisConfig{Timeout: time.Second},
	}

	err := cfg.Validate()
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "GEMINI_API_KEY", cfgErr.Key)
}

func TestValidate_OK(t *testing.T) {
	cfg := &Config{
		Gemini:   GeminiConfig{APIKey: "k"},
		Worker:   WorkerConfig{Concurrency: 2},
		Analysis: AnalysisConfig{Timeout: time.Second},
	}

	assert.NoError(t, cfg.Validate())
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n"}}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.GetDatabaseDSN())
}

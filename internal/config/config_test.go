package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./skillence.db", cfg.DBPath)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "dev", cfg.Mode)
	assert.Equal(t, "Skillence", cfg.Mail.FromName)
	assert.Empty(t, cfg.Mail.FromEmail)
	assert.Equal(t, cfg.BaseURL, cfg.Mail.BaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SKILLENCE_PORT", "9090")
	t.Setenv("SKILLENCE_DB", "/tmp/other.db")
	t.Setenv("SKILLENCE_MODE", "prod")
	t.Setenv("SKILLENCE_BASE_URL", "https://lessons.example.com")
	t.Setenv("SKILLENCE_SES_FROM_EMAIL", "noreply@example.com")
	t.Setenv("SKILLENCE_LLM_PROVIDER", "anthropic")

	cfg := Load()

	require.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, "prod", cfg.Mode)
	assert.Equal(t, "https://lessons.example.com", cfg.BaseURL)
	assert.Equal(t, "https://lessons.example.com", cfg.Mail.BaseURL)
	assert.Equal(t, "noreply@example.com", cfg.Mail.FromEmail)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
}

func TestLoad_PortDrivesDefaultBaseURL(t *testing.T) {
	t.Setenv("SKILLENCE_PORT", "3000")

	cfg := Load()

	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
}

// Package config loads the application configuration from environment
// variables with development-friendly defaults.
package config

import (
	"os"

	"github.com/skillence/skillence/internal/llm"
	"github.com/skillence/skillence/internal/mailer"
)

// Config is the full application configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// DBPath is the SQLite database file.
	DBPath string

	// BaseURL is the externally reachable URL, used in sign-in links.
	BaseURL string

	// Mode selects logging and gin behavior: "dev" or "prod".
	Mode string

	// SessionSecret signs the session cookie JWT.
	SessionSecret string

	Mail mailer.Config
	LLM  llm.Config
}

// Load reads configuration from SKILLENCE_* environment variables.
func Load() Config {
	port := getEnv("SKILLENCE_PORT", "8080")

	cfg := Config{
		Port:          port,
		DBPath:        getEnv("SKILLENCE_DB", "./skillence.db"),
		BaseURL:       getEnv("SKILLENCE_BASE_URL", "http://localhost:"+port),
		Mode:          getEnv("SKILLENCE_MODE", "dev"),
		SessionSecret: getEnv("SKILLENCE_SESSION_SECRET", "dev-only-insecure-secret"),
		Mail: mailer.Config{
			Region:    getEnv("SKILLENCE_SES_REGION", "eu-west-1"),
			FromEmail: os.Getenv("SKILLENCE_SES_FROM_EMAIL"),
			FromName:  getEnv("SKILLENCE_SES_FROM_NAME", "Skillence"),
		},
		LLM: llm.ConfigFromEnv(),
	}
	cfg.Mail.BaseURL = cfg.BaseURL

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the configuration for the current environment. The
// JWT secret is always required; PostgreSQL credentials only when a DB host
// is set, and production refuses to fall back to SQLite.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	}

	if cfg.DBHost != "" {
		if cfg.DBUser == "" {
			errors = append(errors, "DB_USER is required when DB_HOST is set")
		}
		if cfg.DBPassword == "" {
			errors = append(errors, "DB_PASSWORD is required when DB_HOST is set")
		}
		if cfg.DBName == "" {
			errors = append(errors, "DB_NAME is required when DB_HOST is set")
		}
	} else if IsProduction() {
		errors = append(errors, "DB_HOST is required in production")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}

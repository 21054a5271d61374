// Package config loads lyricdeck settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read, when present, before the environment is consulted.
const DefaultEnvFile = "config/local.env"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Security SecurityConfig
	CORS     CORSConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string
	// StateFile seeds an empty store with a JSON state export on startup.
	StateFile string
}

// DatabaseConfig holds the Postgres connection. An empty URL keeps the state
// in memory.
type DatabaseConfig struct {
	URL string
}

// RedisConfig enables cross-instance slide fan-out when URL is set.
type RedisConfig struct {
	URL string
}

// SecurityConfig holds operator authentication settings.
type SecurityConfig struct {
	OperatorPasswordHash string
	JWTSecret            string
	JWTTTL               time.Duration
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// Load reads DefaultEnvFile if it exists, then the environment.
func Load() (*Config, error) {
	return LoadFile(DefaultEnvFile)
}

// LoadFile reads envFile if it exists, then the environment. Variables
// already set in the environment win over the file.
func LoadFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	cfg.Server.Addr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.Server.StateFile = os.Getenv("STATE_FILE")
	cfg.Database.URL = os.Getenv("DATABASE_URL")
	cfg.Redis.URL = os.Getenv("REDIS_URL")
	cfg.CORS.AllowedOrigins = parseAllowedOrigins(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))
	cfg.Logging.Level = strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info"))
	cfg.Logging.Format = strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json"))

	cfg.Security.OperatorPasswordHash = os.Getenv("OPERATOR_PASSWORD_HASH")
	cfg.Security.JWTSecret = os.Getenv("JWT_SECRET")
	ttl, err := time.ParseDuration(getEnvOrDefault("JWT_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.Security.JWTTTL = ttl

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// AuthEnabled reports whether an operator password is configured.
func (c *Config) AuthEnabled() bool {
	return c.Security.OperatorPasswordHash != ""
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Addr == "" {
		problems = append(problems, "SERVER_ADDR is required")
	}

	if c.AuthEnabled() {
		if !strings.HasPrefix(c.Security.OperatorPasswordHash, "$2") {
			problems = append(problems, "OPERATOR_PASSWORD_HASH must be a bcrypt hash")
		}
		if len(c.Security.JWTSecret) < 16 {
			problems = append(problems, "JWT_SECRET must be at least 16 characters when OPERATOR_PASSWORD_HASH is set")
		}
	}
	if c.Security.JWTTTL <= 0 {
		problems = append(problems, "JWT_TTL must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		problems = append(problems, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		problems = append(problems, "LOG_FORMAT must be one of: json, text")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseAllowedOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

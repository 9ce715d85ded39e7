// Package config reads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	RedisAddr string

	// BackendURL is the Python liquor API this service fronts.
	BackendURL string

	// OCRMinLoading is the floor on how long the OCR loading screen shows.
	OCRMinLoading time.Duration

	SessionSecret     string
	OAuthClientID     string
	OAuthClientSecret string
	OAuthAuthURL      string
	OAuthTokenURL     string
	OAuthRedirectURL  string
}

func envOrDefault(key, d string) string {
	v := os.Getenv(key)
	if v == "" {
		return d
	}
	return v
}

// FromEnv builds a Config with sane local-development defaults.
func FromEnv() Config {
	minLoading := 2 * time.Second
	if raw := os.Getenv("OCR_MIN_LOADING"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
			minLoading = d
		}
	}
	return Config{
		Port: envOrDefault("PORT", "8080"),

		DBHost: envOrDefault("DB_HOST", "localhost"),
		DBPort: envOrDefault("DB_PORT", "5432"),
		DBName: envOrDefault("DB_NAME", "jumak_db"),
		DBUser: envOrDefault("DB_USER", "jumak_user"),
		DBPass: envOrDefault("DB_PASS", "jumak"),

		RedisAddr: envOrDefault("REDIS_ADDR", "localhost:6379"),

		BackendURL: envOrDefault("BACKEND_URL", "http://localhost:8000"),

		OCRMinLoading: minLoading,

		SessionSecret:     envOrDefault("SESSION_SECRET", "dev-session-secret"),
		OAuthClientID:     os.Getenv("OAUTH_CLIENT_ID"),
		OAuthClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
		OAuthAuthURL:      envOrDefault("OAUTH_AUTH_URL", "https://accounts.google.com/o/oauth2/v2/auth"),
		OAuthTokenURL:     envOrDefault("OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token"),
		OAuthRedirectURL:  envOrDefault("OAUTH_REDIRECT_URL", "http://localhost:8080/api/auth/callback"),
	}
}

// PostgresURL renders the connection string for lib/pq.
func (c Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

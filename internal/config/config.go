package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, sourced from the environment.
type Config struct {
	Port         string
	DatabasePath string
	JWTSecret    string
	UploadsDir   string
	PublicURL    string

	AllowedOrigins []string

	MailgunDomain      string
	MailgunAPIKey      string
	MailgunSenderEmail string
	MailgunSenderName  string

	IngestArchiveURLs []string
	IngestInterval    time.Duration

	Environment string
}

// Load reads configuration from the environment, consulting a .env file
// when one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "reuse.db"),
		JWTSecret:    getEnv("JWT_SECRET", "change-this-in-production"),
		UploadsDir:   getEnv("UPLOADS_DIR", "uploads"),
		PublicURL:    getEnv("PUBLIC_URL", "http://localhost:8080"),

		AllowedOrigins: splitNonEmpty(getEnv("ALLOWED_ORIGINS", "*")),

		MailgunDomain:      os.Getenv("MAILGUN_DOMAIN"),
		MailgunAPIKey:      os.Getenv("MAILGUN_API_KEY"),
		MailgunSenderEmail: getEnv("MAILGUN_SENDER_EMAIL", "noreply@reuse.local"),
		MailgunSenderName:  getEnv("MAILGUN_SENDER_NAME", "Reuse Market"),

		IngestArchiveURLs: splitNonEmpty(os.Getenv("INGEST_ARCHIVE_URLS")),
		IngestInterval:    getDuration("INGEST_INTERVAL", time.Hour),

		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

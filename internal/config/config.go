package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DefaultRecipient receives submissions when EMAIL_RECIPIENTS is unset.
const DefaultRecipient = "info@miravisions.com"

// Config holds all configuration for the application
type Config struct {
	// Server Configuration
	Environment    string   `env:"ENV" envDefault:"development"`
	Port           string   `env:"API_PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	GlobalRPS      int      `env:"GLOBAL_RPS" envDefault:"10"`
	GlobalBurst    int      `env:"GLOBAL_BURST" envDefault:"20"`

	// Logging Configuration
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"LOG_FILE"`
	LogRequests bool   `env:"LOG_REQUESTS" envDefault:"false"`

	// Telemetry Configuration
	OTLPEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`

	Mail      MailConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
}

// MailConfig describes the SMTP relay and the contact mail envelope.
type MailConfig struct {
	SMTPEmail    string        `env:"SMTP_EMAIL"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SMTPHost     string        `env:"SMTP_HOST" envDefault:"smtp.zoho.com"`
	SMTPPort     int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
	Recipients   string        `env:"EMAIL_RECIPIENTS"`
	FromName     string        `env:"FROM_NAME"`
	// Only the literal "true" enables the auto-reply.
	SendAutoReply string `env:"SEND_AUTO_REPLY"`
}

// RateLimitConfig controls the per-client contact submission limit.
type RateLimitConfig struct {
	Max     int           `env:"RATE_LIMIT_MAX" envDefault:"15"`
	Window  time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1h"`
	Backend string        `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Load loads the configuration from environment variables and .env files
func Load() (*Config, error) {
	envLocations := []string{".env"}

	// If ENV is set, try to load that specific file first
	if envName := os.Getenv("ENV"); envName != "" {
		envLocations = append([]string{fmt.Sprintf(".env.%s", envName)}, envLocations...)
	}

	for _, loc := range envLocations {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(loc); err == nil {
			break
		}
	}

	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.RateLimit.Max <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must be positive")
	}
	if cfg.RateLimit.Window <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	switch cfg.RateLimit.Backend {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", cfg.RateLimit.Backend)
	}

	if cfg.LogFile == "" {
		if cfg.IsProduction() {
			cfg.LogFile = "/app/logs/api.log"
		} else {
			cfg.LogFile = "./logs/api.log"
		}
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasCredentials reports whether both SMTP credentials are present.
func (m MailConfig) HasCredentials() bool {
	return m.SMTPEmail != "" && m.SMTPPassword != ""
}

// AutoReplyEnabled reports whether SEND_AUTO_REPLY is exactly "true".
func (m MailConfig) AutoReplyEnabled() bool {
	return m.SendAutoReply == "true"
}

// SenderName returns FROM_NAME or the default display name.
func (m MailConfig) SenderName() string {
	if m.FromName == "" {
		return "MiraVision Contact System"
	}
	return m.FromName
}

// RecipientCandidates splits EMAIL_RECIPIENTS on commas and trims each entry.
// Entries are not validated here.
func (m MailConfig) RecipientCandidates() []string {
	if m.Recipients == "" {
		return []string{DefaultRecipient}
	}

	parts := strings.Split(m.Recipients, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

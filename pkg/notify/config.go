package notify

import (
	"os"
	"strconv"
	"time"
)

// Config controls outbox delivery behavior.
type Config struct {
	Enabled       bool          // Whether the delivery worker runs. Default true.
	PollInterval  time.Duration // How often the worker polls the outbox. Default 2s.
	MaxAttempts   int           // Delivery attempts before parking as failed. Default 3.
	RetentionDays int           // How long to keep sent/failed notifications. Default 30.

	// SMTP settings; when Host is empty the worker falls back to LogSender.
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	From     string
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		PollInterval:  2 * time.Second,
		MaxAttempts:   3,
		RetentionDays: 30,
		SMTPPort:      587,
		From:          "no-reply@registry.gov",
	}
}

// ConfigFromEnv loads config from environment variables:
// REGISTRY_NOTIFY_ENABLED, REGISTRY_NOTIFY_POLL_INTERVAL_SECONDS,
// REGISTRY_NOTIFY_MAX_ATTEMPTS, REGISTRY_NOTIFY_RETENTION_DAYS,
// REGISTRY_SMTP_HOST, REGISTRY_SMTP_PORT, REGISTRY_SMTP_USER,
// REGISTRY_SMTP_PASS, REGISTRY_NOTIFY_FROM.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("REGISTRY_NOTIFY_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("REGISTRY_NOTIFY_POLL_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollInterval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("REGISTRY_NOTIFY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxAttempts = n
		}
	}
	if v := os.Getenv("REGISTRY_NOTIFY_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RetentionDays = n
		}
	}
	if v := os.Getenv("REGISTRY_SMTP_HOST"); v != "" {
		cfg.SMTPHost = v
	}
	if v := os.Getenv("REGISTRY_SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SMTPPort = n
		}
	}
	if v := os.Getenv("REGISTRY_SMTP_USER"); v != "" {
		cfg.SMTPUser = v
	}
	if v := os.Getenv("REGISTRY_SMTP_PASS"); v != "" {
		cfg.SMTPPass = v
	}
	if v := os.Getenv("REGISTRY_NOTIFY_FROM"); v != "" {
		cfg.From = v
	}

	return cfg
}

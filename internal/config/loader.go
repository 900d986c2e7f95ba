package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if a value cannot be parsed or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	cfg.Security.TrustedProxies = trimAll(cfg.Security.TrustedProxies)
	cfg.Ingest.Encodings = trimAll(cfg.Ingest.Encodings)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// trimAll trims whitespace from comma-separated entries and drops empty ones.
func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.WriteTimeout < 0 {
		errs = append(errs, "SERVER_WRITE_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Upload validation
	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, "UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.Upload.MaxConcurrent <= 0 {
		errs = append(errs, "UPLOAD_MAX_CONCURRENT must be positive")
	}
	if c.Upload.MaxWaitTime <= 0 {
		errs = append(errs, "UPLOAD_MAX_WAIT_TIME must be positive")
	}

	// Ingest validation
	if len(c.Ingest.Encodings) == 0 {
		errs = append(errs, "INGEST_ENCODINGS must list at least one encoding")
	}
	if c.Ingest.PreviewRows <= 0 {
		errs = append(errs, "INGEST_PREVIEW_ROWS must be positive")
	}

	// Session validation
	if c.Session.TTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}
	if c.Session.MaxSessions <= 0 {
		errs = append(errs, "SESSION_MAX must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, "SESSION_SWEEP_INTERVAL must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.Burst <= 0 {
		errs = append(errs, "RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a compact representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Upload: {MaxFileSize: %d, MaxConcurrent: %d}, ",
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent)
	fmt.Fprintf(&b, "Ingest: {Encodings: %v, PreviewRows: %d}, ",
		c.Ingest.Encodings, c.Ingest.PreviewRows)
	fmt.Fprintf(&b, "Session: {TTL: %s, Max: %d}, ", c.Session.TTL, c.Session.MaxSessions)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d, Burst: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.Burst)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}

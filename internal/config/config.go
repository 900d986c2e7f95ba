// Package config provides centralized configuration management for the dashboard.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Ingest   IngestConfig
	Session  SessionConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `envconfig:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request, body included (default: 30s)
	ReadTimeout time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing the response (default: 60s)
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// UploadConfig holds file upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 50MB)
	MaxFileSize int64 `envconfig:"UPLOAD_MAX_FILE_SIZE" default:"52428800"`

	// MaxConcurrent is the maximum number of analyses computed in parallel (default: 4)
	MaxConcurrent int `envconfig:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for a free analysis slot (default: 20s)
	MaxWaitTime time.Duration `envconfig:"UPLOAD_MAX_WAIT_TIME" default:"20s"`
}

// IngestConfig holds file parsing settings.
type IngestConfig struct {
	// Encodings is the ordered candidate list tried for delimited text files
	Encodings []string `envconfig:"INGEST_ENCODINGS" default:"utf-8,latin1,iso-8859-1,cp1252"`

	// PreviewRows is the number of rows shown in the raw data preview (default: 5)
	PreviewRows int `envconfig:"INGEST_PREVIEW_ROWS" default:"5"`
}

// SessionConfig holds in-memory session settings.
type SessionConfig struct {
	// TTL is how long an idle session is kept (default: 1h)
	TTL time.Duration `envconfig:"SESSION_TTL" default:"1h"`

	// MaxSessions bounds the number of live sessions; the oldest is evicted (default: 200)
	MaxSessions int `envconfig:"SESSION_MAX" default:"200"`

	// SweepInterval is how often expired sessions are removed (default: 1m)
	SweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the sustained rate allowed per IP (default: 120)
	RequestsPerMinute int `envconfig:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// Burst is the number of requests allowed above the sustained rate (default: 30)
	Burst int `envconfig:"RATE_LIMIT_BURST" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `envconfig:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `envconfig:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics (default: true)
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

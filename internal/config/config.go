// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables (optionally seeded from a
// TOML file) with sensible defaults and validates all settings on startup to
// fail fast on misconfiguration.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig    `toml:"server"`
	Upload  UploadConfig    `toml:"upload"`
	Juno    JunoConfig      `toml:"juno"`
	Rate    RateLimitConfig `toml:"rate"`
	Logging LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" toml:"host" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" toml:"port" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" toml:"read_timeout" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 2m,
	// exports can take a while when every row hits the remote catalog)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" toml:"write_timeout" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" toml:"idle_timeout" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" toml:"shutdown_timeout" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" toml:"request_timeout" default:"5m"`
}

// UploadConfig holds CSV upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed size per uploaded file in bytes (default: 20MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" toml:"max_file_size" default:"20971520"`
}

// JunoConfig holds settings for the Juno catalog metadata API.
// Both BaseURL and APIKey are optional; when BaseURL is empty the
// resolver runs in fallback-only mode and never touches the network.
type JunoConfig struct {
	// BaseURL is the catalog API root, e.g. https://api.juno.example
	BaseURL string `env:"JUNO_API_BASE" toml:"base_url"`

	// APIKey is the bearer credential sent with catalog lookups
	APIKey string `env:"JUNO_API_KEY" toml:"api_key"`

	// Timeout bounds a single catalog lookup (default: 10s)
	Timeout time.Duration `env:"JUNO_TIMEOUT" toml:"timeout" default:"10s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" toml:"enabled" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 60)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" toml:"requests_per_minute" default:"60"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" toml:"level" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" toml:"format" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RemoteEnabled reports whether catalog lookups should go to the network.
func (c *JunoConfig) RemoteEnabled() bool {
	return strings.TrimSpace(c.BaseURL) != ""
}

// String returns a safe string representation of the config for logging.
// The catalog API key is masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Upload: {MaxFileSize: %d}, ", c.Upload.MaxFileSize))
	b.WriteString(fmt.Sprintf("Juno: {BaseURL: %q, APIKey: [MASKED], Timeout: %s}, ",
		c.Juno.BaseURL, c.Juno.Timeout))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

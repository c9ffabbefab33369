// Package config loads server configuration from environment variables,
// applying defaults for unset values and validating the result on startup
// so misconfiguration fails fast.
package config

import (
	"fmt"
	"time"
)

// Config holds all server settings.
type Config struct {
	Server  ServerConfig
	Upload  UploadConfig
	Render  RenderConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address (default: :8080).
	Addr string `env:"VIZIER_ADDR" default:":8080"`

	// ReadTimeout bounds reading a request body (default: 30s).
	ReadTimeout time.Duration `env:"VIZIER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout bounds writing a response (default: 60s).
	WriteTimeout time.Duration `env:"VIZIER_WRITE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 15s).
	ShutdownTimeout time.Duration `env:"VIZIER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the per-request middleware timeout (default: 60s).
	RequestTimeout time.Duration `env:"VIZIER_REQUEST_TIMEOUT" default:"60s"`
}

// UploadConfig holds multipart upload settings.
type UploadConfig struct {
	// MaxFileSize is the largest accepted upload in bytes (default: 64MB).
	MaxFileSize int64 `env:"VIZIER_MAX_FILE_SIZE" default:"67108864"`
}

// RenderConfig holds figure rendering settings.
type RenderConfig struct {
	// DefaultRenderer names the backend used when a request does not pick
	// one (default: echarts).
	DefaultRenderer string `env:"VIZIER_RENDERER" default:"echarts"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info).
	Level string `env:"VIZIER_LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text).
	Format string `env:"VIZIER_LOG_FORMAT" default:"text"`
}

// Validate checks cross-field constraints that tags cannot express.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address must not be empty")
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.Upload.MaxFileSize)
	}
	if c.Render.DefaultRenderer == "" {
		return fmt.Errorf("default renderer must not be empty")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// Package config reads the process configuration from the environment and
// builds the structured logger every command shares.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Environment variables read by Load.
const (
	EnvAddr        = "PORTFOLIO_ADDR"
	EnvLogLevel    = "PORTFOLIO_LOG_LEVEL"
	EnvDataDir     = "PORTFOLIO_DATA_DIR"
	EnvContentDir  = "PORTFOLIO_CONTENT_DIR"
	EnvWatch       = "PORTFOLIO_WATCH"
	EnvMaxUploadMB = "PORTFOLIO_MAX_UPLOAD_MB"
)

// Config holds the settings of one process.
type Config struct {
	Addr        string // HTTP listen address
	LogLevel    string // debug, info, warn or error
	DataDir     string // directory holding the document database
	ContentDir  string // on-disk content tree; empty selects the embedded tree
	Watch       bool   // reload the content tree when it changes
	MaxUploadMB int    // request body cap for image uploads
}

// Load reads the configuration, falling back to defaults for unset
// variables. Malformed booleans and numbers are errors.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Addr:       env(EnvAddr, ":8080"),
		LogLevel:   env(EnvLogLevel, "info"),
		DataDir:    env(EnvDataDir, "data"),
		ContentDir: env(EnvContentDir, ""),
	}

	watch, err := strconv.ParseBool(env(EnvWatch, "false"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", EnvWatch, err)
	}
	cfg.Watch = watch

	mb, err := strconv.Atoi(env(EnvMaxUploadMB, "10"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", EnvMaxUploadMB, err)
	}
	if mb <= 0 {
		return Config{}, fmt.Errorf("invalid %s: must be positive, got %d", EnvMaxUploadMB, mb)
	}
	cfg.MaxUploadMB = mb

	return cfg, nil
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// DBPath is the SQLite file inside DataDir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "portfolio.db")
}

// ParseLevel maps a level name to a slog level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a logger writing to w at the given level, as JSON or
// as logfmt-style text.
func NewLogger(level string, w io.Writer, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

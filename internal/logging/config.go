// Package logging provides structured logging for handnav.
// It supports console output and rotated JSON file logs.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level represents log severity levels.
type Level int

const (
	// LevelDebug logs everything, including per-tier resolution decisions.
	LevelDebug Level = iota
	// LevelInfo logs informational messages and above.
	LevelInfo
	// LevelWarn logs warnings and errors only.
	LevelWarn
	// LevelError logs only error messages.
	LevelError
)

// String returns the string representation of a log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level for console output.
	Level Level

	// File is the JSON log file. Empty disables file logging.
	File string

	// Rotation settings for File.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Console receives human-readable output. Defaults to stderr.
	Console io.Writer

	// JSONConsole switches the console encoder to JSON (for serve mode).
	JSONConsole bool
}

// DefaultLogFile is the default JSON log location (relative to cwd).
const DefaultLogFile = ".handnav/logs/handnav.log"

// ConfigFromEnv creates a Config from environment variables.
//
// Environment variables:
//   - HANDNAV_DEBUG: Set to "1" to force debug level
//   - HANDNAV_LOG_LEVEL: Console log level (debug, info, warn, error)
//   - HANDNAV_LOG_FILE: Override the JSON log file ("-" disables it)
func ConfigFromEnv() Config {
	cfg := Config{
		Level:      LevelInfo,
		File:       DefaultLogFile,
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 30,
	}

	if level := os.Getenv("HANDNAV_LOG_LEVEL"); level != "" {
		cfg.Level = ParseLevel(level)
	}
	if os.Getenv("HANDNAV_DEBUG") == "1" {
		cfg.Level = LevelDebug
	}
	if file := os.Getenv("HANDNAV_LOG_FILE"); file != "" {
		cfg.File = file
		if file == "-" {
			cfg.File = ""
		}
	}

	return cfg
}

// WithLevel returns a copy of the config with the specified level.
func (c Config) WithLevel(level Level) Config {
	c.Level = level
	return c
}

// WithDebug returns a copy of the config at debug level when enabled.
func (c Config) WithDebug(enabled bool) Config {
	if enabled {
		c.Level = LevelDebug
	}
	return c
}

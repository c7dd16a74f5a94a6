// Package logging provides a unified logging system for handnav.
//
// Output goes to two zap cores joined with a tee:
//   - Console (stderr by default): human-readable, respects the configured level
//   - File: JSON lines rotated by lumberjack, captures info and above
//
// Usage:
//
//	log, err := logging.Init(logging.ConfigFromEnv())
//	if err != nil {
//	    // handle error
//	}
//	defer log.Close()
//
//	log.Info("serving", logging.F("addr", addr))
//	log.Debug("tier matched", logging.Tier("local"), logging.Target("next"))
package logging

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the main logging handle. A nil *Logger is valid and discards everything.
type Logger struct {
	zl      *zap.Logger
	level   zap.AtomicLevel
	rotator *lumberjack.Logger
	metrics *Metrics

	// Component prefix (e.g., "resolver", "llm", "http")
	prefix string
}

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// Init initializes the global logger with the given configuration.
// This should be called early in main() before any logging occurs.
func Init(cfg Config) (*Logger, error) {
	logger, err := New(cfg)
	if err != nil {
		return nil, err
	}

	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
	return logger, nil
}

// New creates a new Logger instance.
func New(cfg Config) (*Logger, error) {
	level := zap.NewAtomicLevelAt(cfg.Level.zapLevel())

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	var consoleEncoder zapcore.Encoder
	if cfg.JSONConsole {
		consoleEncoder = zapcore.NewJSONEncoder(fileEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewConsoleEncoder(consoleCfg)
	}
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(console)), level),
	}

	var rotator *lumberjack.Logger
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, err
		}
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoderConfig()),
			zapcore.AddSync(rotator),
			zap.InfoLevel,
		))
	}

	return &Logger{
		zl:      zap.New(zapcore.NewTee(cores...)),
		level:   level,
		rotator: rotator,
		metrics: NewMetrics(),
	}, nil
}

func fileEncoderConfig() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return encoderConfig
}

// Global returns the global logger instance.
// Returns nil if Init has not been called; nil loggers are safe to use.
func Global() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Nop returns a logger that discards all output but still counts metrics.
func Nop() *Logger {
	return &Logger{zl: zap.NewNop(), level: zap.NewAtomicLevel(), metrics: NewMetrics()}
}

// WithPrefix returns a new logger tagged with the given component.
func (l *Logger) WithPrefix(prefix string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{
		zl:      l.zl.Named(prefix),
		level:   l.level,
		rotator: l.rotator,
		metrics: l.metrics,
		prefix:  prefix,
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.zl.Debug(msg, toZap(fields)...)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.zl.Info(msg, toZap(fields)...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.zl.Warn(msg, toZap(fields)...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.zl.Error(msg, toZap(fields)...)
}

// SetLevel changes the console level at runtime.
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.level.SetLevel(level.zapLevel())
}

// IsDebugEnabled returns true if debug logging is enabled.
func (l *Logger) IsDebugEnabled() bool {
	if l == nil {
		return false
	}
	return l.level.Enabled(zapcore.DebugLevel)
}

// Metrics returns the metrics collector.
func (l *Logger) Metrics() *Metrics {
	if l == nil {
		return nil
	}
	return l.metrics
}

// Zap exposes the underlying zap logger for libraries that want one.
func (l *Logger) Zap() *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.zl
}

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	_ = l.zl.Sync()
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// Package-level helpers log through the global logger.

// Debug logs a debug message via the global logger.
func Debug(msg string, fields ...Field) { Global().Debug(msg, fields...) }

// Info logs an informational message via the global logger.
func Info(msg string, fields ...Field) { Global().Info(msg, fields...) }

// Warn logs a warning via the global logger.
func Warn(msg string, fields ...Field) { Global().Warn(msg, fields...) }

// LogError logs an error via the global logger.
func LogError(msg string, fields ...Field) { Global().Error(msg, fields...) }

// Close closes and clears the global logger.
func Close() error {
	globalMu.Lock()
	l := globalLogger
	globalLogger = nil
	globalMu.Unlock()
	return l.Close()
}

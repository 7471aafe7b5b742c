package logger

import (
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the logging interface used throughout the application
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	SetLevel(level zapcore.Level)
	GetLevel() zapcore.Level
	EnableHTTPLogging()
	DisableHTTPLogging()
	IsHTTPLoggingEnabled() bool
}

// ZapLogger wraps a sugared zap logger with a dynamically adjustable level
type ZapLogger struct {
	sugar       *zap.SugaredLogger
	level       zap.AtomicLevel
	httpLogging atomic.Bool
}

// New creates a new ZapLogger at info level
func New() *ZapLogger {
	return NewWithLevel(zapcore.InfoLevel)
}

// NewWithLevel creates a console-encoded ZapLogger writing to stdout
func NewWithLevel(level zapcore.Level) *ZapLogger {
	atom := zap.NewAtomicLevelAt(level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), atom)
	return newZapLogger(core, atom)
}

// NewWithCore builds a ZapLogger on top of an existing core. The core is wrapped so
// that the returned logger's level still gates output.
func NewWithCore(core zapcore.Core, level zapcore.Level) *ZapLogger {
	atom := zap.NewAtomicLevelAt(level)
	return newZapLogger(&levelCore{Core: core, level: atom}, atom)
}

func newZapLogger(core zapcore.Core, atom zap.AtomicLevel) *ZapLogger {
	return &ZapLogger{
		sugar: zap.New(core).Sugar(),
		level: atom,
	}
}

// ParseLevel converts a string log level to a zap level.
// Accepts: debug, info, warn, error (case-insensitive).
// Returns InfoLevel if the level is not recognized.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *ZapLogger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *ZapLogger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *ZapLogger) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *ZapLogger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

// SetLevel changes the logging level dynamically
func (l *ZapLogger) SetLevel(level zapcore.Level) {
	l.level.SetLevel(level)
}

// GetLevel returns the current logging level
func (l *ZapLogger) GetLevel() zapcore.Level {
	return l.level.Level()
}

// EnableHTTPLogging enables HTTP request logging
func (l *ZapLogger) EnableHTTPLogging() {
	l.httpLogging.Store(true)
}

// DisableHTTPLogging disables HTTP request logging
func (l *ZapLogger) DisableHTTPLogging() {
	l.httpLogging.Store(false)
}

// IsHTTPLoggingEnabled returns whether HTTP logging is enabled
func (l *ZapLogger) IsHTTPLoggingEnabled() bool {
	return l.httpLogging.Load()
}

// levelCore gates an arbitrary core behind an atomic level
type levelCore struct {
	zapcore.Core
	level zap.AtomicLevel
}

func (c *levelCore) Enabled(lvl zapcore.Level) bool {
	return c.level.Enabled(lvl) && c.Core.Enabled(lvl)
}

func (c *levelCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelCore{Core: c.Core.With(fields), level: c.level}
}

func (c *levelCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Package logger provides the process-wide structured logger. It writes a
// colored console stream and, optionally, a rotating log file.
package logger

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance. It discards everything until
// InitWithOptions runs.
var Log = zap.NewNop()

// Sugar is the sugared logger for printf-style call sites.
var Sugar = Log.Sugar()

// FileConfig holds file logging configuration.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns default file logging settings.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  20,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Options selects the logger outputs.
type Options struct {
	Level   string
	File    FileConfig
	Console io.Writer // nil disables console output
}

// InitWithOptions builds and installs the global logger.
func InitWithOptions(opts Options) error {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	var cores []zapcore.Core

	if opts.Console != nil {
		consoleEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			CallerKey:        "caller",
			EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05.000"),
			EncodeLevel:      zapcore.CapitalColorLevelEncoder,
			EncodeCaller:     zapcore.ShortCallerEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(opts.Console), lvl))
	}

	if opts.File.Path != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.File.Path,
			MaxSize:    opts.File.MaxSizeMB,
			MaxBackups: opts.File.MaxBackups,
			MaxAge:     opts.File.MaxAgeDays,
			Compress:   opts.File.Compress,
			LocalTime:  true,
		}

		// Plain levels in files; colour codes make them hard to grep
		fileEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			CallerKey:        "caller",
			EncodeTime:       zapcore.ISO8601TimeEncoder,
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			EncodeCaller:     zapcore.ShortCallerEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(fileWriter), lvl))
	}

	install(zap.New(zapcore.NewTee(cores...), zap.AddCaller()))
	return nil
}

// InitNop installs a logger that discards everything.
func InitNop() {
	install(zap.NewNop())
}

func install(l *zap.Logger) {
	Log = l
	Sugar = l.Sugar()
}

// ParseLevel converts a config level name to a zap level. An empty name means
// info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "":
		return zapcore.InfoLevel, nil
	case "debug", "info", "warn", "error":
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return lvl, fmt.Errorf("parsing log level %q: %w", level, err)
		}
		return lvl, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// With returns a child of the global logger carrying fields.
func With(fields ...zap.Field) *zap.Logger {
	return Log.With(fields...)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

// Fatal logs a fatal message and exits.
func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel orders messages from chattiest to most severe.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Logger is the logging surface handed to every component of the site.
type Logger interface {
	Debug(v ...any)
	Debugf(format string, a ...any)
	Info(v ...any)
	Infof(format string, a ...any)
	Warn(v ...any)
	Warnf(format string, a ...any)
	Error(v ...any)
	Errorf(format string, a ...any)
	With(args ...any) Logger
}

type slogLogger struct {
	logger   *slog.Logger
	logLevel LogLevel
}

// New logs to stdout at the given level.
func New(logLevelStr string) Logger {
	return NewWithWriter(os.Stdout, logLevelStr)
}

// NewWithWriter logs to w. Level names are matched case-insensitively
// ("debug", "info", "warn", "error" and their short forms); anything else
// means info. LOG_FORMAT=json switches from text to JSON records.
func NewWithWriter(w io.Writer, logLevelStr string) Logger {
	level := parseLevel(logLevelStr)
	opts := &slog.HandlerOptions{Level: toSlogLevel(level)}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &slogLogger{logger: slog.New(handler), logLevel: level}
}

func (l *slogLogger) emit(level LogLevel, msg func() string) {
	if l.logLevel > level {
		return
	}
	l.logger.Log(context.Background(), toSlogLevel(level), msg())
}

func (l *slogLogger) Debug(v ...any) {
	l.emit(DebugLevel, func() string { return fmt.Sprint(v...) })
}

func (l *slogLogger) Debugf(format string, a ...any) {
	l.emit(DebugLevel, func() string { return fmt.Sprintf(format, a...) })
}

func (l *slogLogger) Info(v ...any) {
	l.emit(InfoLevel, func() string { return fmt.Sprint(v...) })
}

func (l *slogLogger) Infof(format string, a ...any) {
	l.emit(InfoLevel, func() string { return fmt.Sprintf(format, a...) })
}

func (l *slogLogger) Warn(v ...any) {
	l.emit(WarnLevel, func() string { return fmt.Sprint(v...) })
}

func (l *slogLogger) Warnf(format string, a ...any) {
	l.emit(WarnLevel, func() string { return fmt.Sprintf(format, a...) })
}

func (l *slogLogger) Error(v ...any) {
	l.emit(ErrorLevel, func() string { return fmt.Sprint(v...) })
}

func (l *slogLogger) Errorf(format string, a ...any) {
	l.emit(ErrorLevel, func() string { return fmt.Sprintf(format, a...) })
}

// With attaches key/value pairs to every later record. The level is kept.
func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...), logLevel: l.logLevel}
}

type noopLogger struct{}

func (noopLogger) Debug(v ...any)                 {}
func (noopLogger) Debugf(format string, a ...any) {}
func (noopLogger) Info(v ...any)                  {}
func (noopLogger) Infof(format string, a ...any)  {}
func (noopLogger) Warn(v ...any)                  {}
func (noopLogger) Warnf(format string, a ...any)  {}
func (noopLogger) Error(v ...any)                 {}
func (noopLogger) Errorf(format string, a ...any) {}
func (noopLogger) With(args ...any) Logger        { return noopLogger{} }

// NewNoopLogger drops every record. Tests use it.
func NewNoopLogger() Logger {
	return noopLogger{}
}

func parseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "dbg":
		return DebugLevel
	case "warn", "warning", "wrn":
		return WarnLevel
	case "error", "err":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

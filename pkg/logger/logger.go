// Package logger provides the structured logging surface for the
// engine. Components receive a Logger (or fall back to the package
// default) and never print to stdout themselves.
package logger

import (
	zlogger "github.com/hsdfat/go-zlog/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface the engine components depend on.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
	With(keysAndValues ...any) Logger
}

type zapLogger struct {
	s *zap.SugaredLogger
}

func (l *zapLogger) Debugw(msg string, keysAndValues ...any) { l.s.Debugw(msg, keysAndValues...) }
func (l *zapLogger) Infow(msg string, keysAndValues ...any)  { l.s.Infow(msg, keysAndValues...) }
func (l *zapLogger) Warnw(msg string, keysAndValues ...any)  { l.s.Warnw(msg, keysAndValues...) }
func (l *zapLogger) Errorw(msg string, keysAndValues ...any) { l.s.Errorw(msg, keysAndValues...) }

func (l *zapLogger) With(keysAndValues ...any) Logger {
	return &zapLogger{s: l.s.With(keysAndValues...)}
}

// Log is the package-level default logger.
var Log Logger = func() Logger {
	base := zlogger.NewLogger()
	s := base.SugaredLogger.WithOptions(zap.AddCallerSkip(1))
	return &zapLogger{s: s}
}()

// SetLevel sets the default logger's level.
// Valid levels: "debug", "info", "warn", "error", "fatal"
func SetLevel(level string) {
	zlogger.SetLevel(level)
}

// New builds a named logger at the given level, for injection into a
// Node or test harness.
func New(name, level string) Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	return &zapLogger{s: l.Named(name).Sugar()}
}

// Nop returns a logger that discards everything, for tests that do
// not care about log output.
func Nop() Logger {
	return &zapLogger{s: zap.NewNop().Sugar()}
}

// WithFields creates a child of the default logger with contextual
// fields, e.g. logger.WithFields("conn_id", id, "state", st).
func WithFields(keysAndValues ...any) Logger {
	return Log.With(keysAndValues...)
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

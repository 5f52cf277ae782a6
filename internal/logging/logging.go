package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the component logger passed to every subsystem.
// The first argument names the component ("app", "control", "stats", ...).
type Logger interface {
	Debugf(component string, format string, args ...interface{})
	Infof(component string, format string, args ...interface{})
	Warnf(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Debugf(component, format string, args ...interface{}) {}
func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Warnf(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

// ZapLogger implements Logger on top of a zap sugared logger, using one
// named child logger per component.
type ZapLogger struct {
	base *zap.SugaredLogger
}

// New builds a ZapLogger for the given environment ("dev" or "prod") and level.
func New(env, level string) (*ZapLogger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var cfg zap.Config
	if env != "prod" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.NameKey = "component"

	base, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return FromZap(base), nil
}

// FromZap wraps an existing zap logger.
func FromZap(l *zap.Logger) *ZapLogger {
	return &ZapLogger{base: l.Sugar()}
}

func (l *ZapLogger) Debugf(component string, format string, args ...interface{}) {
	l.base.Named(component).Debugf(format, args...)
}

func (l *ZapLogger) Infof(component string, format string, args ...interface{}) {
	l.base.Named(component).Infof(format, args...)
}

func (l *ZapLogger) Warnf(component string, format string, args ...interface{}) {
	l.base.Named(component).Warnf(format, args...)
}

func (l *ZapLogger) Errorf(component string, format string, args ...interface{}) {
	l.base.Named(component).Errorf(format, args...)
}

// Sync flushes buffered entries. Call before exit.
func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}

package index

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the leveled logger every component logs through, matching the
// five opkg message levels exactly (original_source's opkg_msg levels):
// ERROR is always shown, NOTICE is the default level, INFO/DEBUG/DEBUG2 are
// successively more verbose. Grounded on
// yockgen-nanas-os-builder/internal/utils/logger's zap.SugaredLogger-backed
// logger, trimmed to the handful of methods the index/resolver/feed
// packages call.
type Logger interface {
	Errorf(format string, args ...any)
	Noticef(format string, args ...any)
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
	Debug2f(format string, args ...any)
}

// zapLogger adapts a *zap.SugaredLogger to Logger. DEBUG2 is mapped onto
// zap's DebugLevel as well, distinguished only by a "debug2" logger name,
// since zap has no finer-grained level of its own below Debug.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a Logger backed by zap, logging at or above level to
// stderr in development (color, caller-annotated) format. Valid levels are
// "error", "notice" (treated as zap's warn, opkg has no direct zap
// equivalent), "info", "debug" and "debug2" (both map to zap's debug).
func NewZapLogger(level string) Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewExample()
	}
	return &zapLogger{sugar: l.Sugar()}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "error":
		return zapcore.ErrorLevel
	case "notice":
		return zapcore.WarnLevel
	case "debug", "debug2":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) Errorf(format string, args ...any)  { l.sugar.Errorf(format, args...) }
func (l *zapLogger) Noticef(format string, args ...any) { l.sugar.Warnf(format, args...) }
func (l *zapLogger) Infof(format string, args ...any)   { l.sugar.Infof(format, args...) }
func (l *zapLogger) Debugf(format string, args ...any)  { l.sugar.Debugf(format, args...) }
func (l *zapLogger) Debug2f(format string, args ...any) {
	l.sugar.Named("debug2").Debugf(format, args...)
}

// NopLogger discards everything. Used as the default Logger in tests and
// wherever a Host is built without an explicit logger.
type NopLogger struct{}

func (NopLogger) Errorf(string, ...any)  {}
func (NopLogger) Noticef(string, ...any) {}
func (NopLogger) Infof(string, ...any)   {}
func (NopLogger) Debugf(string, ...any)  {}
func (NopLogger) Debug2f(string, ...any) {}

package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ougirez/bizmap/internal/pkg/constants"
)

var (
	global *zap.SugaredLogger
	once   sync.Once
)

// Init replaces the global logger. Level is one of debug/info/warn/error;
// anything else falls back to info.
func Init(level string) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	l, buildErr := cfg.Build(zap.AddCallerSkip(1))
	if buildErr != nil {
		l = zap.NewNop()
	}

	global = l.Sugar()
}

func get() *zap.SugaredLogger {
	once.Do(func() {
		if global == nil {
			Init("info")
		}
	})
	return global
}

// with pulls request-scoped fields out of ctx.
func with(ctx context.Context) *zap.SugaredLogger {
	l := get()
	if ctx == nil {
		return l
	}
	if reqID, ok := ctx.Value(constants.CtxKeyRequestID).(string); ok && reqID != "" {
		l = l.With("request_id", reqID)
	}
	return l
}

func Debugf(ctx context.Context, format string, args ...interface{}) {
	with(ctx).Debugf(format, args...)
}

func Info(ctx context.Context, msg string) {
	with(ctx).Info(msg)
}

func Infof(ctx context.Context, format string, args ...interface{}) {
	with(ctx).Infof(format, args...)
}

func Warnf(ctx context.Context, format string, args ...interface{}) {
	with(ctx).Warnf(format, args...)
}

func Error(ctx context.Context, msg string) {
	with(ctx).Error(msg)
}

func Errorf(ctx context.Context, format string, args ...interface{}) {
	with(ctx).Errorf(format, args...)
}

// Fatal logs err and exits. Passing nil is a no-op so it can wrap
// server Start calls directly.
func Fatal(ctx context.Context, err error) {
	if err == nil {
		return
	}
	with(ctx).Fatal(err.Error())
}

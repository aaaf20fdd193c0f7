package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level controls which messages are emitted.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu    sync.RWMutex
	level = LevelInfo
	sugar = newSugar(zapcore.InfoLevel)
)

func newSugar(lvl zapcore.Level) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	log, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// zap only fails on invalid config; fall back to the no-op logger
		// rather than crashing the process over logging.
		return zap.NewNop().Sugar()
	}
	return log.Sugar()
}

// SetLevel adjusts the minimum emitted level. Trace maps onto zap's debug
// level; the distinction is kept server-side so trace spam can be filtered
// without rebuilding.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
	zl := zapcore.InfoLevel
	switch l {
	case LevelTrace, LevelDebug:
		zl = zapcore.DebugLevel
	case LevelWarn:
		zl = zapcore.WarnLevel
	case LevelError:
		zl = zapcore.ErrorLevel
	}
	sugar = newSugar(zl)
}

func current() (*zap.SugaredLogger, Level) {
	mu.RLock()
	defer mu.RUnlock()
	return sugar, level
}

// Tracef logs very verbose diagnostics (per-socket traffic and the like).
func Tracef(format string, args ...any) {
	s, l := current()
	if l > LevelTrace {
		return
	}
	s.Debugf(format, args...)
}

// Debugf logs developer diagnostics.
func Debugf(format string, args ...any) {
	s, _ := current()
	s.Debugf(format, args...)
}

// Infof logs normal operational events.
func Infof(format string, args ...any) {
	s, _ := current()
	s.Infof(format, args...)
}

// Warnf logs recoverable problems.
func Warnf(format string, args ...any) {
	s, _ := current()
	s.Warnf(format, args...)
}

// Errorf logs failures that need attention.
func Errorf(format string, args ...any) {
	s, _ := current()
	s.Errorf(format, args...)
}

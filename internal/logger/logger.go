// Package logger provides the process-wide leveled logger.
//
// Call sites use printf-style helpers (logger.Warn("skipping %s", name)).
// Output goes to stderr through a zap console core; SetOutputFile adds a
// second core writing to a file.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a log severity. Trace sits one step below zap's debug level.
type Level = zapcore.Level

const (
	TraceLevel Level = zapcore.DebugLevel - 1
	DebugLevel Level = zapcore.DebugLevel
	InfoLevel  Level = zapcore.InfoLevel
	WarnLevel  Level = zapcore.WarnLevel
	ErrorLevel Level = zapcore.ErrorLevel
	PanicLevel Level = zapcore.PanicLevel
	FatalLevel Level = zapcore.FatalLevel
)

var (
	mu    sync.Mutex
	level = zap.NewAtomicLevelAt(InfoLevel)
	sugar = newSugar(zapcore.Lock(os.Stderr))
)

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		if l == TraceLevel {
			enc.AppendString("TRACE")
			return
		}
		zapcore.CapitalLevelEncoder(l, enc)
	}
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.CallerKey = ""
	return cfg
}

func newSugar(sinks ...zapcore.WriteSyncer) *zap.SugaredLogger {
	cores := make([]zapcore.Core, 0, len(sinks))
	for _, sink := range sinks {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), sink, level))
	}
	return zap.New(zapcore.NewTee(cores...)).Sugar()
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TraceLevel, nil
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "panic":
		return PanicLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("invalid log level %q: use trace, debug, info, warn, error, fatal, panic", s)
	}
}

// SetLevel changes the minimum level that is written.
func SetLevel(l Level) {
	level.SetLevel(l)
}

// GetLevel returns the current minimum level.
func GetLevel() Level {
	return level.Level()
}

// SetOutputFile mirrors log output into path in addition to stderr.
func SetOutputFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	mu.Lock()
	defer mu.Unlock()
	sugar = newSugar(zapcore.Lock(os.Stderr), zapcore.AddSync(f))
	return nil
}

func current() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return sugar
}

func Trace(format string, args ...any) {
	if !level.Enabled(TraceLevel) {
		return
	}
	current().Logf(TraceLevel, format, args...)
}

func Debug(format string, args ...any) {
	current().Debugf(format, args...)
}

func Info(format string, args ...any) {
	current().Infof(format, args...)
}

func Warn(format string, args ...any) {
	current().Warnf(format, args...)
}

func Error(format string, args ...any) {
	current().Errorf(format, args...)
}

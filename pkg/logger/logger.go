// Package logger provides the process-wide leveled logger used by every layer
// of the framework. Records go to a zap logger; until Init or Use is called they
// are discarded.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger = discard()
	logFile      *os.File
	mu           sync.Mutex
)

// keepRunning lets FATAL records through without terminating the process.
// Callers decide how to abort.
type keepRunning struct{}

func (keepRunning) OnWrite(*zapcore.CheckedEntry, []zapcore.Field) {}

func discard() *zap.Logger {
	return zap.NewNop().WithOptions(zap.WithFatalHook(keepRunning{}))
}

// Init initializes the global logger with the specified log file path.
// When console is true records are also written to stderr.
func Init(logPath string, level zapcore.Level, console bool) error {
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000")
	encCfg.EncodeCaller = nil
	encCfg.CallerKey = ""

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), level),
	}
	if console {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level))
	}

	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = globalLogger.Sync()
		logFile.Close()
	}
	logFile = f
	globalLogger = zap.New(zapcore.NewTee(cores...), zap.WithFatalHook(keepRunning{}))
	return nil
}

// Use installs l as the global logger and returns a function restoring the
// previous one. Tests use it with zaptest/observer cores.
func Use(l *zap.Logger) (restore func()) {
	mu.Lock()
	defer mu.Unlock()

	prev := globalLogger
	globalLogger = l.WithOptions(zap.WithFatalHook(keepRunning{}))
	return func() {
		mu.Lock()
		defer mu.Unlock()
		globalLogger = prev
	}
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	_ = globalLogger.Sync()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger = discard()
}

// L returns the current zap logger for callers that want structured fields.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return globalLogger
}

// ParseLevel maps a LOG_LEVEL style name to a zap level. Unknown names map to INFO.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return zap.DebugLevel
	case "WARN", "WARNING":
		return zap.WarnLevel
	case "ERROR":
		return zap.ErrorLevel
	case "FATAL":
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

func logf(level zapcore.Level, format string, v ...interface{}) {
	l := L()
	if ce := l.Check(level, fmt.Sprintf(format, v...)); ce != nil {
		ce.Write()
	}
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	logf(zap.InfoLevel, format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	logf(zap.DebugLevel, format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	logf(zap.WarnLevel, format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	logf(zap.ErrorLevel, format, v...)
}

// Fatal logs a fatal message. It does not exit.
func Fatal(format string, v ...interface{}) {
	logf(zap.FatalLevel, format, v...)
}

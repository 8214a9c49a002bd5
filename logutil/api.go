package logutil

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var globalLogger atomic.Pointer[zap.Logger]

func init() {
	cfg := DefaultLogConfig()
	globalLogger.Store(newLogger(&cfg))
}

// SetupLogger replaces the global logger. It panics on an invalid config.
func SetupLogger(cfg LogConfig) {
	old := globalLogger.Swap(newLogger(&cfg))
	_ = old.Sync()
}

// ReplaceGlobalLogger installs logger and returns a function restoring the previous one.
func ReplaceGlobalLogger(logger *zap.Logger) func() {
	old := globalLogger.Swap(logger)
	return func() { globalLogger.Store(old) }
}

func GetGlobalLogger() *zap.Logger {
	return globalLogger.Load()
}

// Sync flushes any buffered log entries.
func Sync() error {
	return GetGlobalLogger().Sync()
}

// Elapsed is a zap field for a phase duration.
func Elapsed(d time.Duration) zap.Field {
	return zap.Duration("elapsed", d)
}

func Debug(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

// Panic logs msg and then panics, whatever the configured level.
func Panic(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Panic(msg, fields...)
}

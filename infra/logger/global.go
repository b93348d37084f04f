package logger

import (
	"sync"

	"github.com/mstgnz/storepay/infra/config"
	"github.com/mstgnz/storepay/infra/opensearch"
)

const (
	serviceName    = "storepay"
	serviceVersion = "1.0.0"
)

var (
	globalLogger *SystemLogger
	mu           sync.RWMutex
	once         sync.Once
)

// InitGlobalLogger initializes the global system logger
func InitGlobalLogger(openSearchLogger *opensearch.Logger) {
	once.Do(func() {
		appCfg := config.GetAppConfig()

		cfg := SystemLoggerConfig{
			EnableConsole:    true,
			EnableOpenSearch: openSearchLogger != nil,
			MinLevel:         ParseLevel(appCfg.LoggingLevel),
			Service:          serviceName,
			Version:          serviceVersion,
			Environment:      appCfg.Environment,
		}

		if cfg.Environment == "development" {
			cfg.MinLevel = LevelDebug
		}

		SetGlobalLogger(NewSystemLogger(openSearchLogger, cfg))
	})
}

// SetGlobalLogger replaces the global logger
func SetGlobalLogger(l *SystemLogger) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = l
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *SystemLogger {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	// console-only fallback when InitGlobalLogger was never called
	mu.Lock()
	defer mu.Unlock()
	if globalLogger == nil {
		globalLogger = NewSystemLogger(nil, SystemLoggerConfig{
			EnableConsole: true,
			MinLevel:      LevelInfo,
			Service:       serviceName,
			Version:       serviceVersion,
			Environment:   "development",
		})
	}
	return globalLogger
}

// Debug logs a debug message using the global logger
func Debug(message string, ctx ...LogContext) {
	GetGlobalLogger().Debug(message, ctx...)
}

// Info logs an info message using the global logger
func Info(message string, ctx ...LogContext) {
	GetGlobalLogger().Info(message, ctx...)
}

// Warn logs a warning message using the global logger
func Warn(message string, ctx ...LogContext) {
	GetGlobalLogger().Warn(message, ctx...)
}

// Error logs an error message using the global logger
func Error(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Error(message, err, ctx...)
}

// Fatal logs a fatal message using the global logger and exits
func Fatal(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Fatal(message, err, ctx...)
}

// Sync flushes the global logger
func Sync() {
	GetGlobalLogger().Sync()
}

// WithContext creates a context logger from the global logger
func WithContext(ctx LogContext) *ContextLogger {
	return GetGlobalLogger().WithContext(ctx)
}

// WithProvider creates a context logger with provider
func WithProvider(provider string) *ContextLogger {
	return WithContext(LogContext{Provider: provider})
}

// WithRequest creates a context logger with provider and request id
func WithRequest(provider, requestID string) *ContextLogger {
	return WithContext(LogContext{
		Provider:  provider,
		RequestID: requestID,
	})
}

// File: internal/relay/logger.go
package relay

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kenerlabs/kener-telegram-relay/pkg/utils"
)

// Logger handles logging for relay operations
type Logger struct {
	logger   *logrus.Logger
	logLevel logrus.Level
	context  map[string]interface{}
}

// NewLogger creates a new relay logger
func NewLogger(logLevel string) *Logger {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger := utils.GetLogger()
	logger.SetLevel(level)

	return &Logger{
		logger:   logger,
		logLevel: level,
		context:  make(map[string]interface{}),
	}
}

// WithContext adds context to the logger
func (l *Logger) WithContext(context map[string]interface{}) *Logger {
	newLogger := &Logger{
		logger:   l.logger,
		logLevel: l.logLevel,
		context:  make(map[string]interface{}),
	}

	for k, v := range l.context {
		newLogger.context[k] = v
	}
	for k, v := range context {
		newLogger.context[k] = v
	}

	return newLogger
}

// WithField adds a single field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithContext(map[string]interface{}{key: value})
}

// Debug logs a debug message
func (l *Logger) Debug(message string, context ...map[string]interface{}) {
	l.log(logrus.DebugLevel, message, context...)
}

// Info logs an info message
func (l *Logger) Info(message string, context ...map[string]interface{}) {
	l.log(logrus.InfoLevel, message, context...)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, context ...map[string]interface{}) {
	l.log(logrus.WarnLevel, message, context...)
}

// Error logs an error message
func (l *Logger) Error(message string, context ...map[string]interface{}) {
	l.log(logrus.ErrorLevel, message, context...)
}

// log is the internal logging method. logrus levels grow with verbosity
// (Error < Info < Debug), so a message is suppressed only when it is more
// verbose than the configured level.
func (l *Logger) log(level logrus.Level, message string, context ...map[string]interface{}) {
	if level > l.logLevel {
		return
	}

	merged := make(map[string]interface{})
	for k, v := range l.context {
		merged[k] = v
	}
	for _, ctx := range context {
		for k, v := range ctx {
			merged[k] = v
		}
	}
	merged["component"] = "relay"

	entry := l.logger.WithFields(logrus.Fields(merged))

	switch level {
	case logrus.DebugLevel:
		entry.Debug(message)
	case logrus.InfoLevel:
		entry.Info(message)
	case logrus.WarnLevel:
		entry.Warn(message)
	case logrus.ErrorLevel:
		entry.Error(message)
	}
}

// LogDispatchAttempt logs the start of an outbound dispatch
func (l *Logger) LogDispatchAttempt(relayID, alertName, status string) {
	l.Debug("Dispatch attempt started", map[string]interface{}{
		"relay_id":   relayID,
		"alert_name": alertName,
		"status":     status,
	})
}

// LogDispatchResult logs the outcome of an outbound dispatch
func (l *Logger) LogDispatchResult(relayID string, statusCode int, duration time.Duration, err error) {
	context := map[string]interface{}{
		"relay_id":    relayID,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	if err != nil {
		context["error"] = err.Error()
		l.Error("Dispatch failed", context)
	} else {
		l.Info("Dispatch completed", context)
	}
}

// GetLogLevel returns the current log level
func (l *Logger) GetLogLevel() logrus.Level {
	return l.logLevel
}

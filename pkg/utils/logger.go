package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide structured logger. The relay writes to stdout
// only and leaves log collection to the environment it runs in.
var Logger *logrus.Logger

// InitLogger initializes the global logger with the configured level and
// format ("json" or "text"). Unknown levels are rejected so a typo in the
// config fails startup instead of silently logging everything.
func InitLogger(level, format string) error {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(logLevel)

	switch format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	}

	logger.SetOutput(os.Stdout)

	Logger = logger
	return nil
}

// GetLogger returns the global logger, initializing it with defaults when
// InitLogger has not run yet (tests and early startup paths).
func GetLogger() *logrus.Logger {
	if Logger == nil {
		InitLogger("info", "json")
	}
	return Logger
}

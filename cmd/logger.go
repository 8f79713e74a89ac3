package cmd

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const loggerMetadataKeyName = "logger"

// AppLogger retrieves the application-wide logger instance from the
// cli.Context's Metadata. SetAppLogger must have been called before.
func AppLogger(c *cli.Context) logr.Logger {
	return c.App.Metadata[loggerMetadataKeyName].(logr.Logger)
}

// SetAppLogger stores the application-wide logger instance in the
// cli.Context's Metadata, so that it can later be retrieved by AppLogger.
func SetAppLogger(c *cli.Context, logger logr.Logger) {
	c.App.Metadata[loggerMetadataKeyName] = logger
}

// Logger returns a named logger derived from the application-wide instance.
func Logger(c *cli.Context, name string) logr.Logger {
	return AppLogger(c).WithName(name)
}

// NewConsoleLogger builds the zap-backed root logger. With debug enabled the
// verbosity-1 messages become visible.
func NewConsoleLogger(debug bool) logr.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.DisableStacktrace = true

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return zapr.NewLogger(logger)
}

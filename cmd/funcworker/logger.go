package main

import (
	"log"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BackupLogger is for the moments the real logger cannot serve: before it is
// built, or when building it fails.
var BackupLogger = log.New(os.Stderr, "", log.LstdFlags)

// LoggingOptions configure the process logger from CLI flags.
type LoggingOptions struct {
	// LogLevel is the minimum level: debug, info, warn, or error.
	LogLevel string
	// Development switches from JSON to a human-readable console encoding.
	Development bool
}

// AddCLIFlags registers the logging flags on the given flag set.
func (l *LoggingOptions) AddCLIFlags(fs *pflag.FlagSet) {
	fs.StringVar(&l.LogLevel, "log-level", "info", "Minimum log level: debug, info, warn, or error")
	fs.BoolVar(&l.Development, "log-development", false, "Log in a human-readable format instead of JSON")
}

// MustCreateLogger builds the configured logger or exits the process.
func (l *LoggingOptions) MustCreateLogger() *zap.SugaredLogger {
	level, err := zapcore.ParseLevel(l.LogLevel)
	if err != nil {
		BackupLogger.Fatalf("Invalid log level %q: %v", l.LogLevel, err)
	}
	config := zap.NewProductionConfig()
	if l.Development {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	logger, err := config.Build()
	if err != nil {
		BackupLogger.Fatalf("Failed to create logger: %v", err)
	}
	return logger.Sugar()
}

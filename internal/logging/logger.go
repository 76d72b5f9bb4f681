package logging

import (
	"context"
	"os"

	zap "go.uber.org/zap"
)

// Logger constants
const (
	LabelOutput   = "output"
	LabelMethod   = "method"
	LabelInputs   = "inputs"
	LabelCubes    = "cubes"
	LabelLiterals = "literals"
	LabelDuration = "duration"
	LabelPass     = "pass"
	InfoLevel     = "info"
	DebugLevel    = "debug"
	ErrorLevel    = "error"
)

// NewLogger returns a logger at the given level. An empty level falls
// back to the LOG_LEVEL environment variable.
func NewLogger(level string) *zap.SugaredLogger {
	if level == "" {
		level, _ = os.LookupEnv("LOG_LEVEL")
	}
	config := ConfigureLogLevelLogger(level)
	config.OutputPaths = []string{"stderr"}
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return logger.Named("qelm").Sugar()
}

type loggerKey struct{}

// WithLogger returns a copy of parent context in which the
// value associated with logger key is the supplied logger.
func WithLogger(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger in the context.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if logger, ok := ctx.Value(loggerKey{}).(*zap.SugaredLogger); ok {
		return logger
	}
	return NewLogger("")
}

// Returns logger config depending on the log level
func ConfigureLogLevelLogger(logLevel string) zap.Config {
	logConfig := zap.NewProductionConfig()
	switch logLevel {
	case ErrorLevel:
		logConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	case DebugLevel:
		logConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		logConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return logConfig
}

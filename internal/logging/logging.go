// Package logging builds the zap loggers used across protectwatch.
// All output goes to stderr so stdout stays free for reports and the MCP stdio transport.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger at info level, or a console logger at debug level when verbose.
func New(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.OutputPaths = []string{"stderr"}
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build(zap.Fields(zap.String("service", "protectwatch")))
}

// Must is New that falls back to a no-op logger when the config cannot be built.
func Must(verbose bool) *zap.Logger {
	l, err := New(verbose)
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// Package utils holds process-level helpers shared by the vecagent binaries.
package utils

import "go.uber.org/zap"

// NewLogger returns a zap logger named after the agent. When debug is true, uses development config
// (human-readable, debug level); otherwise uses production config (JSON, info level).
// opts are applied on top, e.g. zap.WithFatalHook in tests.
func NewLogger(debug bool, opts ...zap.Option) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment(opts...)
	} else {
		logger, err = zap.NewProduction(opts...)
	}
	if err != nil {
		return nil, err
	}
	return logger.Named("vecagent"), nil
}

// Package logging provides internal logging utilities for txroute.
package logging

import "github.com/arloliu/txroute/types"

// NopLogger is a no-op logger that discards all log messages.
//
// It is the default logger of every component, so hot paths never check
// for a nil logger.
type NopLogger struct{}

var _ types.Logger = (*NopLogger)(nil)

// NewNopLogger creates a new no-op logger.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (l *NopLogger) Debug(_ string, _ ...any) {}

// Info discards the message.
func (l *NopLogger) Info(_ string, _ ...any) {}

// Warn discards the message.
func (l *NopLogger) Warn(_ string, _ ...any) {}

// Error discards the message.
func (l *NopLogger) Error(_ string, _ ...any) {}

// Fatal discards the message. It does not exit the process.
func (l *NopLogger) Fatal(_ string, _ ...any) {}

// OrNop returns logger, or a NopLogger when logger is nil.
func OrNop(logger types.Logger) types.Logger {
	if logger == nil {
		return NewNopLogger()
	}

	return logger
}

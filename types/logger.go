package types

// Logger is the structured logger used by every txroute component.
//
// Messages are followed by alternating key/value pairs, e.g.
//
//	logger.Warn("replica backed off", "replica", name, "until", until)
//
// Implementations MUST be safe for concurrent use.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	Fatal(msg string, keysAndValues ...any)
}

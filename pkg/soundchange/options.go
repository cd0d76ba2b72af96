package soundchange

import "log/slog"

// Options configures rule compilation.
type Options struct {
	// Strict rejects rule characters that are not defined sounds, class names
	// or rule symbols.
	Strict bool

	// Logger for matcher warnings and rule application events. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{}
}

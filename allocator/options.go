package allocator

import "golang.org/x/exp/slog"

// Option configures the optional runtime parameters (currently just logging) a composing or
// leaf allocator accepts at construction. Compile-time parameters (capacities, size bounds) are
// ordinary constructor arguments, not Options, since Go has no const-generics to express them
// as type parameters.
type Option func(*slog.Logger) *slog.Logger

// WithLogger attaches a structured logger to an allocator. Allocators default to slog.Default()
// when no logger is supplied; a nil log leaves that default in place.
func WithLogger(log *slog.Logger) Option {
	return func(cur *slog.Logger) *slog.Logger {
		if log == nil {
			return cur
		}
		return log
	}
}

func applyOptions(dst **slog.Logger, opts []Option) {
	log := slog.Default()
	for _, opt := range opts {
		log = opt(log)
	}
	*dst = log
}

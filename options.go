package cmem

import "log/slog"

type options struct {
	dynamic          bool
	memoryLimit      int64
	dumpRateLimit    int64
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Memory.
type Option func(*options)

// WithDynamicSizing stores each block at its exact compressed size instead
// of reserving the codec's worst case for every block. Block storage is then
// allocated lazily on the first save.
func WithDynamicSizing(enabled bool) Option {
	return func(o *options) {
		o.dynamic = enabled
	}
}

// WithMemoryLimit sets a hard limit in bytes for at-rest block storage
// (including the dynamic-mode staging buffer). 0 disables the limit.
//
// In fixed mode the whole reservation is checked at construction. In dynamic
// mode a save that would grow storage past the limit fails with
// ErrMemoryLimit and leaves the block and the working buffer untouched.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithDumpRateLimit throttles Dump to the given number of bytes per second.
// 0 disables throttling.
func WithDumpRateLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.dumpRateLimit = bytesPerSec
	}
}

// WithMetricsCollector configures a metrics collector for cache operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &cmem.BasicMetricsCollector{}
//	m, _ := cmem.New(c, 64, 1024, cmem.WithMetricsCollector(metrics))
//	// ... use m ...
//	stats := metrics.GetStats()
//	fmt.Printf("loads: %d, hit rate: %.2f\n", stats.LoadCount, stats.HitRate())
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for cache operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

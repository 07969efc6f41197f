package telemetry

import (
	"log"

	"mechmania/server/logging"
)

// Logger is the plain diagnostics surface used by server components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface. A nil LoggerFunc
// discards everything.
type LoggerFunc func(format string, args ...any)

func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger. A nil logger discards.
func WrapLogger(logger *log.Logger) Logger {
	if logger == nil {
		return LoggerFunc(nil)
	}
	return logger
}

// Prefixed tags every line written through logger with a component name,
// e.g. Prefixed(logger, "sim") writes "[sim] ...". A nil logger discards.
func Prefixed(logger Logger, component string) Logger {
	if logger == nil {
		return LoggerFunc(nil)
	}
	tag := "[" + component + "] "
	return LoggerFunc(func(format string, args ...any) {
		logger.Printf(tag+format, args...)
	})
}

// Metrics records counters and gauges. Match metrics are plain uint64
// series keyed by snake_case names such as sim_ticks_total.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// WrapMetrics exposes router metrics through the Metrics interface. The
// returned value is nil when metrics is nil, so the helpers below skip it.
func WrapMetrics(metrics *logging.Metrics) Metrics {
	if metrics == nil {
		return nil
	}
	return metrics
}

// Inc bumps a counter by one. It is a no-op when m is nil.
func Inc(m Metrics, key string) {
	Add(m, key, 1)
}

// Add bumps a counter. It is a no-op when m is nil.
func Add(m Metrics, key string, delta uint64) {
	if m != nil {
		m.Add(key, delta)
	}
}

// Store sets a gauge. It is a no-op when m is nil.
func Store(m Metrics, key string, value uint64) {
	if m != nil {
		m.Store(key, value)
	}
}

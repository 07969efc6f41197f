package logging

import (
	"sort"
	"sync"
)

// Metrics is a concurrency-safe set of named counters and gauges.
type Metrics struct {
	mu     sync.Mutex
	values map[string]uint64
}

func NewMetrics() *Metrics {
	return &Metrics{values: make(map[string]uint64)}
}

// Add increments a counter.
func (m *Metrics) Add(key string, delta uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.values[key] += delta
	m.mu.Unlock()
}

// Store overwrites a gauge.
func (m *Metrics) Store(key string, value uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
}

// Value reads a single metric, zero when unset.
func (m *Metrics) Value(key string) uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// Snapshot copies every metric.
func (m *Metrics) Snapshot() map[string]uint64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[string]uint64, len(m.values))
	for k, v := range m.values {
		copied[k] = v
	}
	return copied
}

// Keys lists metric names in sorted order.
func (m *Metrics) Keys() []string {
	snapshot := m.Snapshot()
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

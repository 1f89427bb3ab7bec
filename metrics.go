package combat

import (
	"sync"
)

// Metrics tracks combat counters for observability. Counters are written from the tick goroutine;
// Snapshot may be read from anywhere.
type Metrics struct {
	mu sync.Mutex

	damageApplied   uint64
	damageRejected  uint64
	damageReplaced  uint64
	damageBuffered  uint64
	knockbackApplies uint64
	swingWindowHits uint64
	reachRejections uint64
}

// NewMetrics creates an empty metrics registry.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	DamageApplied    uint64
	DamageRejected   uint64
	DamageReplaced   uint64
	DamageBuffered   uint64
	KnockbackApplies uint64
	SwingWindowHits  uint64
	ReachRejections  uint64
}

// Snapshot returns a copy of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		DamageApplied:    m.damageApplied,
		DamageRejected:   m.damageRejected,
		DamageReplaced:   m.damageReplaced,
		DamageBuffered:   m.damageBuffered,
		KnockbackApplies: m.knockbackApplies,
		SwingWindowHits:  m.swingWindowHits,
		ReachRejections:  m.reachRejections,
	}
}

func (m *Metrics) incDamageApplied() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.damageApplied++
	m.mu.Unlock()
}

func (m *Metrics) incDamageRejected() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.damageRejected++
	m.mu.Unlock()
}

func (m *Metrics) incDamageReplaced() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.damageReplaced++
	m.mu.Unlock()
}

func (m *Metrics) incDamageBuffered() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.damageBuffered++
	m.mu.Unlock()
}

func (m *Metrics) incKnockbackApplies() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.knockbackApplies++
	m.mu.Unlock()
}

func (m *Metrics) incSwingWindowHits() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.swingWindowHits++
	m.mu.Unlock()
}

func (m *Metrics) incReachRejections() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.reachRejections++
	m.mu.Unlock()
}

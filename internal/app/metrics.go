package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks pager performance counters.
type Metrics struct {
	// Viewport resolution
	resolveCount   atomic.Uint64
	resolveTotalNs atomic.Int64

	// Window reloads observed via the bus
	reloadCount atomic.Uint64

	// Ingestion
	appendCount   atomic.Uint64
	appendLines   atomic.Uint64
	appendTotalNs atomic.Int64

	// Draw timing
	drawCount   atomic.Uint64
	drawTotalNs atomic.Int64
	drawMaxNs   atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordResolve records one viewport resolution.
func (m *Metrics) RecordResolve(d time.Duration) {
	m.resolveCount.Add(1)
	m.resolveTotalNs.Add(d.Nanoseconds())
}

// RecordReload records one window reload completion.
func (m *Metrics) RecordReload() {
	m.reloadCount.Add(1)
}

// RecordAppend records one ingestion call.
func (m *Metrics) RecordAppend(lines int, d time.Duration) {
	m.appendCount.Add(1)
	m.appendLines.Add(uint64(lines))
	m.appendTotalNs.Add(d.Nanoseconds())
}

// RecordDraw records one screen draw.
func (m *Metrics) RecordDraw(d time.Duration) {
	ns := d.Nanoseconds()
	m.drawCount.Add(1)
	m.drawTotalNs.Add(ns)

	for {
		old := m.drawMaxNs.Load()
		if ns <= old {
			break
		}
		if m.drawMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// MetricsSnapshot is a point-in-time view of the counters.
type MetricsSnapshot struct {
	Uptime time.Duration

	ResolveCount uint64
	ResolveAvg   time.Duration

	ReloadCount uint64

	AppendCount uint64
	AppendLines uint64
	AppendAvg   time.Duration

	DrawCount uint64
	DrawAvg   time.Duration
	DrawMax   time.Duration
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Uptime:       time.Since(m.startTime),
		ResolveCount: m.resolveCount.Load(),
		ReloadCount:  m.reloadCount.Load(),
		AppendCount:  m.appendCount.Load(),
		AppendLines:  m.appendLines.Load(),
		DrawCount:    m.drawCount.Load(),
		DrawMax:      time.Duration(m.drawMaxNs.Load()),
	}
	if snap.ResolveCount > 0 {
		snap.ResolveAvg = time.Duration(m.resolveTotalNs.Load() / int64(snap.ResolveCount))
	}
	if snap.AppendCount > 0 {
		snap.AppendAvg = time.Duration(m.appendTotalNs.Load() / int64(snap.AppendCount))
	}
	if snap.DrawCount > 0 {
		snap.DrawAvg = time.Duration(m.drawTotalNs.Load() / int64(snap.DrawCount))
	}
	return snap
}

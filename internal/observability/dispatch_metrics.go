package observability

import (
	"sync/atomic"
	"time"
)

// DispatchMetrics is a cheap in-process counter set for the reminder worker.
// It complements the Prometheus vectors with a snapshot the worker can log on
// shutdown without scraping itself.
type DispatchMetrics struct {
	claimed atomic.Uint64
	sent    atomic.Uint64
	failed  atomic.Uint64
	retried atomic.Uint64

	durationCount atomic.Uint64
	durationTotal atomic.Int64
	durationMax   atomic.Int64
}

func NewDispatchMetrics() *DispatchMetrics {
	return &DispatchMetrics{}
}

func (m *DispatchMetrics) IncClaimed() { m.claimed.Add(1) }
func (m *DispatchMetrics) IncSent()    { m.sent.Add(1) }
func (m *DispatchMetrics) IncFailed()  { m.failed.Add(1) }
func (m *DispatchMetrics) IncRetried() { m.retried.Add(1) }

func (m *DispatchMetrics) ObserveDuration(d time.Duration) {
	ns := d.Nanoseconds()
	m.durationCount.Add(1)
	m.durationTotal.Add(ns)

	for {
		curr := m.durationMax.Load()

		if ns <= curr {
			return
		}

		if m.durationMax.CompareAndSwap(curr, ns) {
			return
		}
	}
}

type DispatchSnapshot struct {
	Claimed         uint64
	Sent            uint64
	Failed          uint64
	Retried         uint64
	AverageDuration time.Duration
	MaxDuration     time.Duration
}

func (m *DispatchMetrics) Snapshot() DispatchSnapshot {
	count := m.durationCount.Load()
	total := m.durationTotal.Load()

	var avg time.Duration

	if count > 0 {
		avg = time.Duration(total / int64(count))
	}

	return DispatchSnapshot{
		Claimed:         m.claimed.Load(),
		Sent:            m.sent.Load(),
		Failed:          m.failed.Load(),
		Retried:         m.retried.Load(),
		AverageDuration: avg,
		MaxDuration:     time.Duration(m.durationMax.Load()),
	}
}

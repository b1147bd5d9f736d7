package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Stats aggregates the counters exposed on the admin dashboard.
type Stats struct {
	VerificationsStarted  Counter
	VerificationsVerified Counter
	VerificationsRejected Counter
	ReservationsMade      Counter
	ReservationsReverted  Counter
}

// Snapshot is the JSON shape served by the stats endpoint.
type Snapshot struct {
	VerificationsStarted  uint64 `json:"verifications_started"`
	VerificationsVerified uint64 `json:"verifications_verified"`
	VerificationsRejected uint64 `json:"verifications_rejected"`
	ReservationsMade      uint64 `json:"reservations_made"`
	ReservationsReverted  uint64 `json:"reservations_reverted"`
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		VerificationsStarted:  s.VerificationsStarted.Load(),
		VerificationsVerified: s.VerificationsVerified.Load(),
		VerificationsRejected: s.VerificationsRejected.Load(),
		ReservationsMade:      s.ReservationsMade.Load(),
		ReservationsReverted:  s.ReservationsReverted.Load(),
	}
}

package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounter(t *testing.T) {
	var c Counter
	c.Inc()
	c.Add(4)
	assert.Equal(t, uint64(5), c.Load())
}

func TestCounter_Concurrent(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(50), c.Load())
}

func TestStats_Snapshot(t *testing.T) {
	var s Stats
	s.VerificationsStarted.Add(3)
	s.VerificationsVerified.Inc()
	s.VerificationsRejected.Add(2)
	s.ReservationsMade.Add(7)
	s.ReservationsReverted.Add(4)

	snap := s.Snapshot()
	assert.Equal(t, uint64(3), snap.VerificationsStarted)
	assert.Equal(t, uint64(1), snap.VerificationsVerified)
	assert.Equal(t, uint64(2), snap.VerificationsRejected)
	assert.Equal(t, uint64(7), snap.ReservationsMade)
	assert.Equal(t, uint64(4), snap.ReservationsReverted)
}

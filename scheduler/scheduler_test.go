package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStopKeepsInFlightContextAlive(t *testing.T) {
	s := NewScheduler(nil, nil, nil, time.Minute)
	s.drain = 50 * time.Millisecond

	s.Stop()

	// In-flight work keeps a live context for the drain period.
	assert.NoError(t, s.ctx.Err(), "Stop must not cancel the running cycle's context immediately")

	assert.Eventually(t, func() bool {
		return s.ctx.Err() == context.Canceled
	}, time.Second, 10*time.Millisecond, "context is cancelled once the drain period passes")
}

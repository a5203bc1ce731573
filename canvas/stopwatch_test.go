package canvas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStopwatchFreezesWhilePaused(t *testing.T) {
	s := newStopwatch()
	assert.True(t, s.Running())

	time.Sleep(20 * time.Millisecond)
	s.Stop()
	frozen := s.Elapsed()
	assert.Greater(t, frozen, time.Duration(0))

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, frozen, s.Elapsed(), "paused time must not advance")
}

func TestStopwatchResumesFromPausePoint(t *testing.T) {
	s := newStopwatch()
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	frozen := s.Elapsed()

	time.Sleep(30 * time.Millisecond)
	s.Start()
	time.Sleep(10 * time.Millisecond)

	resumed := s.Elapsed()
	assert.Greater(t, resumed, frozen)
	// the 30ms paused span is excluded
	assert.Less(t, resumed-frozen, 30*time.Millisecond)
}

func TestStopwatchIdempotentTransitions(t *testing.T) {
	s := newStopwatch()
	s.Stop()
	frozen := s.Elapsed()
	s.Stop()
	assert.Equal(t, frozen, s.Elapsed())

	s.Start()
	s.Start()
	assert.True(t, s.Running())
}

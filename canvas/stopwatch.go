package canvas

import "time"

// stopwatch accumulates wall time while running. Pausing freezes the
// reading; resuming continues from where it stopped, so paused spans
// never leak into shader time.
type stopwatch struct {
	accumulated time.Duration
	startedAt   time.Time
	running     bool
}

func newStopwatch() *stopwatch {
	return &stopwatch{startedAt: time.Now(), running: true}
}

func (s *stopwatch) Start() {
	if s.running {
		return
	}
	s.startedAt = time.Now()
	s.running = true
}

func (s *stopwatch) Stop() {
	if !s.running {
		return
	}
	s.accumulated += time.Since(s.startedAt)
	s.running = false
}

func (s *stopwatch) Running() bool { return s.running }

func (s *stopwatch) Elapsed() time.Duration {
	if s.running {
		return s.accumulated + time.Since(s.startedAt)
	}
	return s.accumulated
}

package mapview

import (
	"sync"
	"time"
)

// scheduler runs at most one pending callback. Scheduling a new one,
// or cancelling, invalidates whatever was pending: a stale timer that
// fires anyway sees a newer generation and does nothing.
type scheduler struct {
	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

func (s *scheduler) schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}

	s.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		stale := s.gen != gen
		s.mu.Unlock()
		if stale {
			return
		}
		fn()
	})
}

func (s *scheduler) cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

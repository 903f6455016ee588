package monitor

import (
	"sync"

	"github.com/nekomimist/fileopsd/internal/changequeue"
)

// IdleScheduler implements §4.8's "Consumption scheduling": every enqueue
// schedules at most one outstanding idle callback on the UI executor that
// calls Consume, via a single-shot boolean guard.
type IdleScheduler struct {
	queue    *changequeue.Queue
	schedule func(cb func())
	consume  func([]changequeue.Entry)

	mu        sync.Mutex
	scheduled bool
}

// NewIdleScheduler wires itself into queue.OnEnqueue. schedule posts a
// callback onto the host's idle/UI executor (e.g. glib's idle_add,
// fyne's driver queue, or a plain goroutine in a headless host); consume
// is handed each drained batch.
func NewIdleScheduler(queue *changequeue.Queue, schedule func(cb func()), consume func([]changequeue.Entry)) *IdleScheduler {
	s := &IdleScheduler{queue: queue, schedule: schedule, consume: consume}
	queue.OnEnqueue(s.onEnqueue)
	return s
}

func (s *IdleScheduler) onEnqueue() {
	s.mu.Lock()
	already := s.scheduled
	if !already {
		s.scheduled = true
	}
	s.mu.Unlock()
	if already {
		return
	}
	s.schedule(s.fire)
}

func (s *IdleScheduler) fire() {
	s.mu.Lock()
	s.scheduled = false
	s.mu.Unlock()
	s.queue.Consume(s.consume)
}

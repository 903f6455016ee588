package monitor

import (
	"sync"
	"testing"

	"github.com/nekomimist/fileopsd/internal/changequeue"
)

func TestIdleSchedulerCoalescesBursts(t *testing.T) {
	queue := changequeue.New()
	var mu sync.Mutex
	scheduleCalls := 0
	var pending func()

	schedule := func(cb func()) {
		mu.Lock()
		scheduleCalls++
		pending = cb
		mu.Unlock()
	}

	var consumed []changequeue.Entry
	consume := func(batch []changequeue.Entry) { consumed = append(consumed, batch...) }

	NewIdleScheduler(queue, schedule, consume)

	queue.Added("/a")
	queue.Added("/b")
	queue.Added("/c")

	mu.Lock()
	calls := scheduleCalls
	fire := pending
	mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected exactly one schedule() call for a burst, got %d", calls)
	}

	fire()
	if len(consumed) != 3 {
		t.Fatalf("expected all 3 entries consumed in one batch, got %d", len(consumed))
	}

	queue.Added("/d")
	mu.Lock()
	calls = scheduleCalls
	mu.Unlock()
	if calls != 2 {
		t.Fatalf("expected a new schedule() call after the guard reset, got %d", calls)
	}
}

func TestMountRemovedEmitsUnmountedWhenUnderRoot(t *testing.T) {
	queue := changequeue.New()
	w := &Watch{dir: "/mnt/share/sub", queue: queue}
	w.handleMountRemoved("/mnt/share")
	if queue.Len() != 1 {
		t.Fatalf("expected one Unmounted entry, got %d", queue.Len())
	}
}

func TestMountRemovedIgnoresUnrelatedRoot(t *testing.T) {
	queue := changequeue.New()
	w := &Watch{dir: "/mnt/other", queue: queue}
	w.handleMountRemoved("/mnt/share")
	if queue.Len() != 0 {
		t.Fatalf("expected no entries for an unrelated mount root, got %d", queue.Len())
	}
}

package jobs

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nekomimist/fileopsd/internal/apperrors"
	"github.com/nekomimist/fileopsd/internal/job"
)

// debug hook, mirrors the teacher's own SetDebug(fn)/dbg() pattern.
var debugf func(format string, args ...interface{})

// SetDebug installs a debug logger.
func SetDebug(fn func(format string, args ...interface{})) { debugf = fn }

func dbg(format string, args ...interface{}) {
	if debugf != nil {
		debugf("jobs: "+format, args...)
	}
}

// historyMax bounds how many finished handles the registry retains for
// the UI's "recent activity" list before trimming the oldest.
const historyMax = 100

// Registry launches and tracks jobs. Per §5's scheduling model there is no
// shared worker pool: Launch spawns a dedicated goroutine for every job,
// and the registry's only job is bookkeeping (ID assignment, snapshots,
// cancel-by-ID, subscriber notification) — never serialization.
type Registry struct {
	mu          sync.Mutex
	nextID      int64
	active      map[int64]*Handle
	history     []*Handle
	subscribers []func()
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// Default returns the process-wide registry singleton.
func Default() *Registry {
	once.Do(func() { defaultRegistry = NewRegistry() })
	return defaultRegistry
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[int64]*Handle)}
}

// Subscribe registers a callback invoked (without any lock held) after
// every state change: launch, completion, or cancellation.
func (r *Registry) Subscribe(cb func()) {
	r.mu.Lock()
	r.subscribers = append(r.subscribers, cb)
	n := len(r.subscribers)
	r.mu.Unlock()
	dbg("subscriber added (total=%d)", n)
}

func (r *Registry) notify() {
	r.mu.Lock()
	subs := append([]func(){}, r.subscribers...)
	r.mu.Unlock()
	for _, cb := range subs {
		cb()
	}
}

// Launch assigns a fresh ID to base, starts run in its own goroutine, and
// returns immediately with the Handle the caller can poll or cancel —
// the async entry points of §6 (copy_async, move_async, extract_files,
// ...) are thin wrappers around this.
func (r *Registry) Launch(kind job.Kind, base *job.Job, run Runnable) *Handle {
	h := &Handle{ID: atomic.AddInt64(&r.nextID, 1), Kind: kind, Base: base, status: StatusRunning, enqueuedAt: time.Now(), startedAt: time.Now()}

	r.mu.Lock()
	r.active[h.ID] = h
	r.mu.Unlock()
	dbg("launch id=%d kind=%s", h.ID, kind)
	r.notify()

	go r.run(h, run)
	return h
}

func (r *Registry) run(h *Handle, run Runnable) {
	success, err := run.Run()

	h.mu.Lock()
	h.completedAt = time.Now()
	switch {
	case apperrors.IsCanceled(err):
		h.status = StatusCanceled
	case !success || err != nil:
		h.status = StatusFailed
		h.err = err
	default:
		h.status = StatusCompleted
	}
	h.mu.Unlock()
	dbg("finished id=%d status=%s", h.ID, h.status)

	r.mu.Lock()
	delete(r.active, h.ID)
	r.history = append(r.history, h)
	if len(r.history) > historyMax {
		r.history = append([]*Handle{}, r.history[len(r.history)-historyMax:]...)
	}
	r.mu.Unlock()
	r.notify()
}

// Cancel trips the cancellation token of the active job with the given
// ID. Reports false if no active job has that ID (already finished, or
// never existed).
func (r *Registry) Cancel(id int64) bool {
	r.mu.Lock()
	h, ok := r.active[id]
	r.mu.Unlock()
	if !ok {
		return false
	}
	h.Cancel()
	dbg("cancel id=%d", id)
	return true
}

// Get returns the handle for id, active or finished.
func (r *Registry) Get(id int64) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.active[id]; ok {
		return h, true
	}
	for _, h := range r.history {
		if h.ID == id {
			return h, true
		}
	}
	return nil, false
}

// List returns snapshots of every active job followed by finished jobs,
// most recently finished first.
func (r *Registry) List() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Snapshot, 0, len(r.active)+len(r.history))
	for _, h := range r.active {
		out = append(out, h.Snapshot())
	}
	for i := len(r.history) - 1; i >= 0; i-- {
		out = append(out, r.history[i].Snapshot())
	}
	return out
}

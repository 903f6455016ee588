// Package jobs is the root job registry: it tracks every in-flight and
// recently finished job by ID for the host UI (§5 "one worker thread per
// job" — each Handle gets its own goroutine, there is no shared queue).
package jobs

import (
	"sync"
	"time"

	"github.com/nekomimist/fileopsd/internal/job"
)

// Status is the lifecycle state of one registry Handle.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Runnable is any of this repo's job types (copymove.Job, trash.Job,
// archive.ExtractJob/CompressJob, create.Job/RenameJob/PermissionsJob):
// anything whose Run method reports success and an error.
type Runnable interface {
	Run() (success bool, err error)
}

// Handle is the registry's per-job bookkeeping: the underlying job.Job
// for progress/cancellation, plus the terminal outcome once Run returns.
type Handle struct {
	ID   int64
	Kind job.Kind

	Base *job.Job // nil only in tests that don't need cancellation/progress

	mu          sync.RWMutex
	status      Status
	err         error
	enqueuedAt  time.Time
	startedAt   time.Time
	completedAt time.Time
}

// Snapshot is the read-only view a UI consumer polls.
type Snapshot struct {
	ID          int64
	Kind        job.Kind
	Status      Status
	Error       string
	Progress    progressSnapshot
	EnqueuedAt  time.Time
	StartedAt   time.Time
	CompletedAt time.Time
}

// progressSnapshot mirrors progress.Snapshot's exported fields the
// registry cares about, kept separate so this package doesn't need to
// import the concrete Handle's internals beyond its public Snapshot().
type progressSnapshot struct {
	Fraction         float64
	StatusLong       string
	StatusShort      string
	RemainingSeconds int64
}

func (h *Handle) snapshotLocked() Snapshot {
	s := Snapshot{
		ID:          h.ID,
		Kind:        h.Kind,
		Status:      h.status,
		EnqueuedAt:  h.enqueuedAt,
		StartedAt:   h.startedAt,
		CompletedAt: h.completedAt,
	}
	if h.err != nil {
		s.Error = h.err.Error()
	}
	if h.Base != nil && h.Base.Progress != nil {
		p := h.Base.Progress.Snapshot()
		s.Progress = progressSnapshot{Fraction: p.Fraction, StatusLong: p.StatusLong, StatusShort: p.StatusShort, RemainingSeconds: p.RemainingSeconds}
	}
	return s
}

// Snapshot returns a thread-safe read of the handle's current state.
func (h *Handle) Snapshot() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshotLocked()
}

// Cancel trips the handle's underlying job cancellation token.
func (h *Handle) Cancel() {
	if h.Base != nil {
		h.Base.Abort()
	}
}

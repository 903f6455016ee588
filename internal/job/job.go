// Package job implements the CommonJob framework of §4.1: the lifecycle,
// cancellation/progress primitives, and scan+verify passes shared by the
// copy/move, delete/trash, create, and archive engines.
package job

import (
	"context"
	"sync"
	"time"

	"github.com/nekomimist/fileopsd/internal/apperrors"
	"github.com/nekomimist/fileopsd/internal/changequeue"
	"github.com/nekomimist/fileopsd/internal/dialog"
	"github.com/nekomimist/fileopsd/internal/progress"
)

// debug hook, installed by the process embedding this engine; mirrors the
// teacher's own SetDebug(fn)/dbg() pattern in internal/jobs/manager.go.
var debugf func(format string, args ...interface{})

// SetDebug installs a debug logger.
func SetDebug(fn func(format string, args ...interface{})) { debugf = fn }

func dbg(format string, args ...interface{}) {
	if debugf != nil {
		debugf("job: "+format, args...)
	}
}

// Kind is the fixed taxonomy of operations this engine runs.
type Kind string

const (
	KindCopy           Kind = "copy"
	KindMove           Kind = "move"
	KindDuplicate      Kind = "duplicate"
	KindLink           Kind = "link"
	KindDelete         Kind = "delete"
	KindTrash          Kind = "trash"
	KindEmptyTrash     Kind = "empty_trash"
	KindCreate         Kind = "create"
	KindRename         Kind = "rename"
	KindExtract        Kind = "extract"
	KindCompress       Kind = "compress"
	KindSetPermissions Kind = "set_permissions"
)

// PowerInhibitor requests a session-level suspend/logout inhibit, per §6's
// PowerInhibit capability. Implemented over dbus in internal/power.
type PowerInhibitor interface {
	Inhibit(reason string) (cookie uint32, err error)
	Uninhibit(cookie uint32)
}

// UndoBuilder accumulates operation pairs for §6's UndoManager capability
// (record_operation/add_origin_target_pair). A job's builder is handed to
// the UndoManager on successful completion and discarded on abort.
type UndoBuilder interface {
	AddOriginTargetPair(origin, target string)
	AddPermissionsChange(path string, oldMode, newMode uint32)
	Commit()
	Discard()
}

// Job holds the fields common to every job kind (§3 "Job (abstract)").
type Job struct {
	Kind Kind

	ParentWindow          interface{} // opaque to core
	ExternalInteractivity interface{} // opaque dbus/window-parenting handle

	Progress *progress.Handle
	Changes  *changequeue.Queue
	Dialogs  *dialog.Service
	Power    PowerInhibitor
	Undo     UndoBuilder

	StartTime time.Time

	mu sync.Mutex

	powerCookie    uint32
	hasPowerCookie bool

	skipAll       bool
	mergeAll      bool
	replaceAll    bool
	deleteAll     bool
	skipAllError  bool
	skipFiles     map[string]bool
	skipReaddir   map[string]bool
	lastDialogAt  time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// New allocates the common job state: a fresh cancellation token and
// progress handle, per new_job(kind, parent_window, dbus_interactivity).
func New(kind Kind, parentWindow, dbusInteractivity interface{}, changes *changequeue.Queue, dialogs *dialog.Service) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	return &Job{
		Kind:                  kind,
		ParentWindow:          parentWindow,
		ExternalInteractivity: dbusInteractivity,
		Progress:              progress.New(),
		Changes:               changes,
		Dialogs:               dialogs,
		skipFiles:             make(map[string]bool),
		skipReaddir:           make(map[string]bool),
		ctx:                   ctx,
		cancel:                cancel,
	}
}

// Context returns the job's cancellation context.
func (j *Job) Context() context.Context { return j.ctx }

// Cancelled reports whether the job's cancellation token has tripped.
func (j *Job) Cancelled() bool {
	select {
	case <-j.ctx.Done():
		return true
	default:
		return false
	}
}

// CheckCancelled returns apperrors.ErrCanceled if the job has been
// cancelled, nil otherwise. Scan/execute loops call this at every boundary.
func (j *Job) CheckCancelled() error {
	if j.Cancelled() {
		return apperrors.ErrCanceled
	}
	return nil
}

// InhibitPower requests a session suspend/logout inhibit; a no-op if no
// PowerInhibitor capability was wired in (e.g. a headless/batch host).
func (j *Job) InhibitPower(reason string) {
	if j.Power == nil {
		return
	}
	cookie, err := j.Power.Inhibit(reason)
	if err != nil {
		dbg("inhibit_power failed: %v", err)
		return
	}
	j.mu.Lock()
	j.powerCookie = cookie
	j.hasPowerCookie = true
	j.mu.Unlock()
}

// Start records the start time and hands it to the dialog service for its
// interactivity-delay computation.
func (j *Job) Start() {
	j.StartTime = time.Now()
	if j.Dialogs != nil {
		j.Dialogs.MarkJobStarted(j.StartTime)
	}
	dbg("start kind=%s", j.Kind)
}

// Finalize releases the power inhibit and commits the undo builder, but
// only if the job completed successfully and wasn't already under replay.
func (j *Job) Finalize(succeeded bool) {
	j.mu.Lock()
	cookie, had := j.powerCookie, j.hasPowerCookie
	j.hasPowerCookie = false
	j.mu.Unlock()
	if had && j.Power != nil {
		j.Power.Uninhibit(cookie)
	}
	if j.Undo == nil {
		return
	}
	if succeeded {
		j.Undo.Commit()
	} else {
		j.Undo.Discard()
	}
}

// Abort trips the cancellation token and discards any undo builder.
func (j *Job) Abort() {
	j.cancel()
	if j.Undo != nil {
		j.Undo.Discard()
	}
	dbg("abort kind=%s", j.Kind)
}

// SkipAll reports the latched "Skip-all" flag for per-file errors.
func (j *Job) SkipAll() bool { j.mu.Lock(); defer j.mu.Unlock(); return j.skipAll }

// SetSkipAll latches the "Skip-all" flag.
func (j *Job) SetSkipAll() { j.mu.Lock(); j.skipAll = true; j.mu.Unlock() }

// MergeAll/ReplaceAll/DeleteAll mirror SkipAll for the conflict protocol's
// other latched "-all" outcomes.
func (j *Job) MergeAll() bool      { j.mu.Lock(); defer j.mu.Unlock(); return j.mergeAll }
func (j *Job) SetMergeAll()        { j.mu.Lock(); j.mergeAll = true; j.mu.Unlock() }
func (j *Job) ReplaceAll() bool    { j.mu.Lock(); defer j.mu.Unlock(); return j.replaceAll }
func (j *Job) SetReplaceAll()      { j.mu.Lock(); j.replaceAll = true; j.mu.Unlock() }
func (j *Job) DeleteAllFlag() bool { j.mu.Lock(); defer j.mu.Unlock(); return j.deleteAll }
func (j *Job) SetDeleteAllFlag()   { j.mu.Lock(); j.deleteAll = true; j.mu.Unlock() }
func (j *Job) SkipAllError() bool  { j.mu.Lock(); defer j.mu.Unlock(); return j.skipAllError }
func (j *Job) SetSkipAllError()    { j.mu.Lock(); j.skipAllError = true; j.mu.Unlock() }

// MarkSkipped adds path to the job's skip_files set.
func (j *Job) MarkSkipped(path string) {
	j.mu.Lock()
	j.skipFiles[path] = true
	j.mu.Unlock()
}

// IsSkipped reports whether path is in skip_files.
func (j *Job) IsSkipped(path string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.skipFiles[path]
}

// MarkReaddirSkipped adds path to the job's skip_readdir_error set.
func (j *Job) MarkReaddirSkipped(path string) {
	j.mu.Lock()
	j.skipReaddir[path] = true
	j.mu.Unlock()
}

// IsReaddirSkipped reports whether path is in skip_readdir_error.
func (j *Job) IsReaddirSkipped(path string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.skipReaddir[path]
}

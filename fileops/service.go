// Package fileops is the public façade of §6: the root-level surface a host
// (desktop shell, CLI, test harness) calls instead of reaching into
// internal/... directly. Every entry point below builds the job type for
// its internal/... package, wires in the Service's shared capabilities, and
// either launches it on the registry (the async form) or runs it inline on
// the calling goroutine (the sync form used by tests and headless callers).
package fileops

import (
	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/archive"
	"github.com/nekomimist/fileopsd/internal/changequeue"
	"github.com/nekomimist/fileopsd/internal/create"
	"github.com/nekomimist/fileopsd/internal/dialog"
	"github.com/nekomimist/fileopsd/internal/job"
	"github.com/nekomimist/fileopsd/internal/jobs"
	"github.com/nekomimist/fileopsd/internal/power"
	"github.com/nekomimist/fileopsd/internal/trash"
	"github.com/nekomimist/fileopsd/internal/undo"
)

// Tagger is the SCHEME_STARRED destination capability (§9 open question):
// starring a source is a tag mutation, never a job, and is never undoable.
type Tagger interface {
	Star(path string) error
}

// TrashRootsProvider supplies the trash directories EmptyTrash and
// UnmountMountFull operate on, without fileops depending on the concrete
// *trash.XDGTrasher backend.
type TrashRootsProvider interface {
	Roots() ([]string, error)
}

// ClipboardSource is the host's image-clipboard capability for
// paste_image_from_clipboard: encoded image bytes plus a suggested file
// name (without extension), and whether the clipboard held an image at all.
type ClipboardSource interface {
	ImageBytes() (data []byte, suggestedName string, ok bool)
}

// TextureEncoder is save_image_from_texture's opaque GPU texture input,
// narrowed to the one thing this engine needs from it: a PNG encoding.
type TextureEncoder interface {
	EncodePNG() ([]byte, error)
}

// Mount is the opaque mount handle unmount_mount_full receives, narrowed to
// the one query this engine needs: its own trash roots, if any, for the
// check_trash step.
type Mount interface {
	TrashRoots() []string
}

// Ejector is the platform mount capability backing unmount_mount_full's
// eject/unmount step. parent_window and mount_operation are passed through
// opaque, exactly as §6 describes them.
type Ejector interface {
	Eject(mount Mount, mountOperation interface{}) error
	Unmount(mount Mount, mountOperation interface{}) error
}

// Service holds every capability the façade's entry points wire into the
// jobs they build. Fields left nil degrade the way their internal/...
// package already documents (e.g. a nil Power is a no-op inhibit); only Fs,
// Changes, Dialogs, Jobs and Undo are expected to always be set.
type Service struct {
	Fs       afero.Fs
	Changes  *changequeue.Queue
	Dialogs  *dialog.Service
	Jobs     *jobs.Registry
	Undo     *undo.Manager
	Policies *job.PolicyCache
	Power    job.PowerInhibitor

	Trasher    trash.Trasher
	TrashRoots TrashRootsProvider
	Recent     create.RecentRegistrar

	Extractor  archive.Extractor
	Compressor archive.Compressor
	Passphrase archive.PassphrasePrompter

	Tagger    Tagger
	Ejector   Ejector
	Clipboard ClipboardSource
}

// NewService builds a Service with sensible headless defaults: an
// AutoPresenter that answers Cancel to every dialog, a no-op power
// inhibitor, and a fresh job registry/undo manager/policy cache. Callers
// override Trasher/Extractor/Compressor/Tagger/Ejector/Clipboard/TrashRoots
// as the host has them available.
func NewService(fs afero.Fs) *Service {
	return &Service{
		Fs:       fs,
		Changes:  changequeue.New(),
		Dialogs:  dialog.NewService(dialog.AutoPresenter{Reply: dialog.Reply{Response: dialog.Cancel}}),
		Jobs:     jobs.NewRegistry(),
		Undo:     undo.NewManager(),
		Policies: job.NewPolicyCache(),
		Power:    power.Noop{},
	}
}

// newJob allocates the common job.Job state and attaches this Service's
// power inhibitor and, when opKind is non-empty, a fresh undo builder.
func (s *Service) newJob(kind job.Kind, parentWindow, dbusInteractivity interface{}, opKind undo.OpKind) *job.Job {
	base := job.New(kind, parentWindow, dbusInteractivity, s.Changes, s.Dialogs)
	base.Power = s.Power
	if opKind != "" && s.Undo != nil {
		base.Undo = s.Undo.NewOp(opKind)
	}
	return base
}

// runnableFunc adapts a plain func() (bool, error) to jobs.Runnable, so
// every entry point below can wrap its on_done callback around a job's Run
// without a dedicated wrapper type per job kind.
type runnableFunc func() (bool, error)

func (f runnableFunc) Run() (bool, error) { return f() }

package trash

import (
	"os"
	"path/filepath"

	"github.com/nekomimist/fileopsd/internal/apperrors"
	"github.com/nekomimist/fileopsd/internal/changequeue"
	"github.com/nekomimist/fileopsd/internal/dialog"
	"github.com/nekomimist/fileopsd/internal/job"
)

// EmptyJob implements empty_trash(parent_view, ask_confirmation, dbus): it
// empties every configured trash root, leaving each root directory itself
// existing but empty, per §8's testable invariant.
type EmptyJob struct {
	*job.Job

	Roots           []string // trash root directories, e.g. Root/files and Root/info
	AskConfirmation bool
}

// NewEmptyJob constructs an EmptyJob over the given trash roots.
func NewEmptyJob(base *job.Job, roots []string, askConfirmation bool) *EmptyJob {
	return &EmptyJob{Job: base, Roots: roots, AskConfirmation: askConfirmation}
}

// Run empties every root, emitting a Removed ChangeEntry per top-level
// child removed.
func (j *EmptyJob) Run() (success bool, err error) {
	j.Start()
	defer func() { j.Finalize(success) }()

	if j.AskConfirmation {
		resp := j.Dialogs.Ask(dialog.Request{
			Heading: "Empty all items from Trash?",
			Allowed: dialog.AllowEmptyTrash | dialog.AllowCancel,
		}, j.Progress)
		if resp.Response != dialog.EmptyTrash {
			return false, apperrors.ErrCanceled
		}
	}

	for _, root := range j.Roots {
		if err := j.CheckCancelled(); err != nil {
			return false, err
		}
		entries, rerr := os.ReadDir(root)
		if rerr != nil {
			continue
		}
		for _, e := range entries {
			if err := j.CheckCancelled(); err != nil {
				return false, err
			}
			child := filepath.Join(root, e.Name())
			if err := os.RemoveAll(child); err != nil {
				continue
			}
			j.Changes.Enqueue(changequeue.Entry{Kind: changequeue.Removed, Path: child})
		}
	}
	return true, nil
}

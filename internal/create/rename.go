package create

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/dialog"
	"github.com/nekomimist/fileopsd/internal/job"
	"github.com/nekomimist/fileopsd/internal/progress"
)

// RenameJob is the RenameJob of §3: a plain single-item rename, reporting
// cancelled/success outputs and the item's new location.
type RenameJob struct {
	*job.Job

	Fs      afero.Fs
	Path    string
	NewName string

	Cancelled bool
	Success   bool
	NewPath   string

	doneFiles int
}

// NewRenameJob constructs a RenameJob.
func NewRenameJob(base *job.Job, fs afero.Fs, path, newName string) *RenameJob {
	return &RenameJob{Job: base, Fs: fs, Path: path, NewName: newName}
}

// Run performs the rename, per §4.5 "Rename": no scan/verify phase, just a
// direct backend call and an error-reporting fallback.
func (j *RenameJob) Run() (success bool, err error) {
	j.Start()
	defer func() { j.Finalize(success) }()

	if err := j.CheckCancelled(); err != nil {
		j.Cancelled = true
		return false, err
	}

	j.Progress.SetTotals(1, 0)

	newPath := filepath.Join(filepath.Dir(j.Path), j.NewName)
	if renameErr := j.Fs.Rename(j.Path, newPath); renameErr != nil {
		j.Dialogs.Ask(dialog.Request{
			Heading: "Error renaming item",
			Body:    j.Path,
			Details: renameErr.Error(),
			Allowed: dialog.AllowCancel,
		}, j.Progress)
		j.Success = false
		return false, renameErr
	}

	j.NewPath = newPath
	j.Success = true
	j.Changes.MovedEntry(j.Path, newPath)
	if j.Undo != nil {
		j.Undo.AddOriginTargetPair(j.Path, newPath)
	}
	j.doneFiles++
	j.Progress.Report(j.doneFiles, 0, false,
		progress.StatusLong(progress.PhraseMoving, 1), progress.StatusShort(progress.PhraseMoving, 1),
		progress.TruncateDisplayName(j.NewName), "")
	return true, nil
}

package create

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/dialog"
	"github.com/nekomimist/fileopsd/internal/job"
)

// PermissionsJob is set_permissions_recursive(dir, file_value, file_mask,
// dir_value, dir_mask) of §4.5: walk a directory tree applying
// new = (current &^ mask) | value, separately for files and directories,
// recording the pre-image mode of every descendant to the undo builder.
type PermissionsJob struct {
	*job.Job

	Fs  afero.Fs
	Dir string

	FileValue, FileMask os.FileMode
	DirValue, DirMask   os.FileMode

	NumApplied int
}

// NewPermissionsJob constructs a PermissionsJob.
func NewPermissionsJob(base *job.Job, fs afero.Fs, dir string, fileValue, fileMask, dirValue, dirMask os.FileMode) *PermissionsJob {
	return &PermissionsJob{Job: base, Fs: fs, Dir: dir, FileValue: fileValue, FileMask: fileMask, DirValue: dirValue, DirMask: dirMask}
}

// Run walks Dir's tree non-recursively-through-symlinks, applying the
// file/directory mode transform to every descendant including Dir itself.
func (j *PermissionsJob) Run() (success bool, err error) {
	j.Start()
	defer func() { j.Finalize(success) }()

	if err := j.applyOne(j.Dir); err != nil {
		if err == errSkip {
			return j.NumApplied > 0, nil
		}
		return j.NumApplied > 0, err
	}
	if err := j.walk(j.Dir); err != nil {
		return j.NumApplied > 0, err
	}
	return true, nil
}

var errSkip = errAlreadyHandled{}

type errAlreadyHandled struct{}

func (errAlreadyHandled) Error() string { return "permissions: skipped" }

func (j *PermissionsJob) walk(dir string) error {
	entries, err := afero.ReadDir(j.Fs, dir)
	if err != nil {
		return j.handleError(dir, err)
	}
	for _, e := range entries {
		if err := j.CheckCancelled(); err != nil {
			return err
		}
		child := filepath.Join(dir, e.Name())
		if err := j.applyOne(child); err != nil && err != errSkip {
			return err
		}
		if e.IsDir() {
			if err := j.walk(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (j *PermissionsJob) applyOne(path string) error {
	fi, err := j.Fs.Stat(path)
	if err != nil {
		return j.handleError(path, err)
	}

	value, mask := j.FileValue, j.FileMask
	if fi.IsDir() {
		value, mask = j.DirValue, j.DirMask
	}

	current := fi.Mode().Perm()
	newMode := (current &^ mask) | value
	if j.Undo != nil {
		j.Undo.AddPermissionsChange(path, uint32(current), uint32(newMode))
	}
	if newMode == current {
		j.NumApplied++
		return nil
	}

	if err := j.Fs.Chmod(path, newMode); err != nil {
		return j.handleError(path, err)
	}
	j.NumApplied++
	j.Progress.Report(j.NumApplied, 0, false, "Setting permissions", "Permissions", path, "")
	return nil
}

func (j *PermissionsJob) handleError(path string, cause error) error {
	if j.SkipAll() {
		j.MarkSkipped(path)
		return errSkip
	}
	resp := j.Dialogs.Ask(dialog.Request{
		Heading: "Error setting permissions",
		Body:    path,
		Details: cause.Error(),
		Allowed: dialog.AllowSkip | dialog.AllowSkipAll | dialog.AllowCancel,
	}, j.Progress)
	switch resp.Response {
	case dialog.SkipAll:
		j.SetSkipAll()
		fallthrough
	case dialog.Skip:
		j.MarkSkipped(path)
		return errSkip
	default:
		return cause
	}
}

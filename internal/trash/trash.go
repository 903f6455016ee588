// Package trash implements the Delete/Trash engine of §4.3: partitioning
// inputs into trash-or-delete, recursive permanent delete, and the
// NotSupported-triggered "delete immediately?" fallback.
package trash

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/apperrors"
	"github.com/nekomimist/fileopsd/internal/changequeue"
	"github.com/nekomimist/fileopsd/internal/dialog"
	"github.com/nekomimist/fileopsd/internal/fsremote"
	"github.com/nekomimist/fileopsd/internal/job"
	"github.com/nekomimist/fileopsd/internal/progress"
)

// debug hook, mirrors the teacher's per-package dbg() pattern.
var debugf func(format string, args ...interface{})

// SetDebug installs a debug logger.
func SetDebug(fn func(format string, args ...interface{})) { debugf = fn }

func dbg(format string, args ...interface{}) {
	if debugf != nil {
		debugf("trash: "+format, args...)
	}
}

// Trasher is the platform trash capability (§6 "the core consumes"): move a
// path into the platform's trash, returning the trashed item's new location
// (for internal/undo's restore step) or apperrors.ErrNotSupported when the
// backend cannot trash it (a remote share with no trash folder, a
// cross-device item, ...).
type Trasher interface {
	Trash(path string) (trashedPath string, err error)
}

// Job is the DeleteJob of §3: a job.Job plus the sources, the try_trash
// flag, and the user_cancel output.
type Job struct {
	*job.Job

	Fs     afero.Fs
	Trash  Trasher
	Allow  AutoConfirm // auto-confirm categories wired in by the host

	Sources   []string
	TryTrash  bool
	UserCancel bool

	// AskConfirmation, if false, skips the confirmation dialog entirely
	// (e.g. the caller already confirmed via its own UI, or the testing
	// flag named in §4.3's entry decision tree is set).
	AskConfirmation bool

	// doneItems is the job-wide cumulative count of top-level sources
	// fully trashed or deleted, kept monotonic across the whole job.
	doneItems int
}

// AutoConfirm carries the host-wired part of the categories that bypass
// the deletion confirmation dialog: the testing flag. The burn-tree and
// recent categories are matched by scheme in AutoConfirmScheme.
type AutoConfirm struct {
	Testing bool // headless/test callers: never prompt
}

// AutoConfirmScheme reports whether src's scheme auto-confirms permanent
// deletion without a dialog: burn staging trees and the recent-files list.
func AutoConfirmScheme(src string) bool {
	switch fsremote.ClassifyScheme(src) {
	case fsremote.SpecialBurn, fsremote.SpecialRecent:
		return true
	default:
		return false
	}
}

// New constructs a DeleteJob.
func New(base *job.Job, fs afero.Fs, trasher Trasher, sources []string, tryTrash bool, allow AutoConfirm) *Job {
	return &Job{Job: base, Fs: fs, Trash: trasher, Sources: sources, TryTrash: tryTrash, Allow: allow, AskConfirmation: true}
}

// Run implements §4.3's entry decision tree: partition sources into
// to_trash/to_delete, confirm as required, trash then permanently delete.
func (j *Job) Run() (success bool, err error) {
	j.Start()
	defer func() { j.Finalize(success) }()

	j.InhibitPower("file delete")

	var toTrash, toDelete []string
	var confirmInTrash, confirmOutsideTrash bool

	for _, src := range j.Sources {
		scheme := fsremote.ClassifyScheme(src)
		switch {
		case !j.TryTrash:
			toDelete = append(toDelete, src)
			if !j.Allow.Testing && !AutoConfirmScheme(src) {
				confirmOutsideTrash = true
			}
		case scheme == fsremote.SpecialTrash:
			toDelete = append(toDelete, src)
			confirmInTrash = true
		case j.Allow.Testing || AutoConfirmScheme(src):
			toDelete = append(toDelete, src)
		default:
			toTrash = append(toTrash, src)
		}
	}

	if j.AskConfirmation && (confirmInTrash || confirmOutsideTrash) {
		if !j.confirmDelete(len(toDelete), confirmInTrash) {
			j.UserCancel = true
			return false, apperrors.ErrCanceled
		}
	}

	// Trash doesn't recurse during its scan (§4.1 "if a directory and the
	// op is not Trash, recurse"): a directory source counts as one unit
	// since trashing it is a single backend call regardless of its size.
	info, serr := job.ScanSources(j.Job, j.Fs, j.Sources, true, nil)
	if serr != nil {
		return false, serr
	}
	j.Progress.SetTotals(info.NumFiles, 0)

	anySucceeded := false
	allSkipped := true

	for _, src := range toTrash {
		if err := j.CheckCancelled(); err != nil {
			return anySucceeded, err
		}
		ok, fellBackToDelete := j.trashOne(src)
		if fellBackToDelete {
			toDelete = append(toDelete, src)
			continue
		}
		if ok {
			anySucceeded = true
			allSkipped = false
		}
	}

	for _, src := range toDelete {
		if err := j.CheckCancelled(); err != nil {
			return anySucceeded, err
		}
		if j.deleteRecursive(src, true) {
			anySucceeded = true
			allSkipped = false
		}
	}

	if allSkipped && len(j.Sources) > 0 {
		j.UserCancel = true
		return false, nil
	}
	return true, nil
}

func (j *Job) confirmDelete(count int, fromTrash bool) bool {
	heading := "Delete permanently?"
	if fromTrash {
		heading = "Delete items from the trash?"
	}
	if count > 1 {
		heading = fmt.Sprintf("%s (%d items)", heading, count)
	}
	resp := j.Dialogs.Ask(dialog.Request{
		Heading: heading,
		Allowed: dialog.AllowDelete | dialog.AllowCancel,
	}, j.Progress)
	return resp.Response == dialog.Delete
}

// trashOne invokes the platform trash capability. On NotSupported it
// synthesizes the Skip/Skip-all/Delete/Delete-all/Cancel prompt of §4.3 and
// reports (false, true) when the caller should retry the path as a
// permanent delete.
func (j *Job) trashOne(src string) (ok bool, fellBackToDelete bool) {
	if j.Trash == nil {
		return false, true
	}
	trashedPath, err := j.Trash.Trash(src)
	if err == nil {
		j.Changes.Enqueue(changequeue.Entry{Kind: changequeue.Removed, Path: src})
		if j.Undo != nil {
			j.Undo.AddOriginTargetPair(src, trashedPath)
		}
		j.completeItem()
		j.reportProgress(progress.PhraseTrashing, src)
		return true, false
	}
	if !errors.Is(err, apperrors.ErrNotSupported) {
		dbg("trash %s failed: %v", src, err)
		return false, false
	}

	if j.DeleteAllFlag() {
		return false, true
	}
	resp := j.Dialogs.Ask(dialog.Request{
		Heading: fmt.Sprintf("%q cannot be put in the trash — delete immediately?", filepath.Base(src)),
		Body:    src,
		Allowed: dialog.AllowSkip | dialog.AllowSkipAll | dialog.AllowDelete | dialog.AllowDeleteAll | dialog.AllowCancel,
	}, j.Progress)
	switch resp.Response {
	case dialog.DeleteAll:
		j.SetDeleteAllFlag()
		fallthrough
	case dialog.Delete:
		return false, true
	case dialog.SkipAll:
		j.SetSkipAll()
		fallthrough
	case dialog.Skip:
		j.MarkSkipped(src)
		return false, false
	default:
		return false, false
	}
}

// deleteRecursive implements permanent delete: try unlink, on NotEmpty
// enumerate and recurse children first, then retry. Reports whether the
// path was actually removed (false if skipped). topLevel marks the
// outermost call for one of j.Sources, the only point that advances the
// job-wide doneItems total — the scan counted one unit per top-level
// source regardless of how many descendants deleting it recurses into.
func (j *Job) deleteRecursive(path string, topLevel bool) bool {
	if j.IsSkipped(path) {
		return false
	}
	if err := j.CheckCancelled(); err != nil {
		return false
	}

	fi, statErr := j.Fs.Stat(path)
	if statErr != nil {
		return false
	}

	if fi.IsDir() {
		entries, err := afero.ReadDir(j.Fs, path)
		if err != nil {
			return j.handleDeleteError(path, err)
		}
		allChildrenGone := true
		for _, e := range entries {
			if err := j.CheckCancelled(); err != nil {
				return false
			}
			child := filepath.Join(path, e.Name())
			if !j.deleteRecursive(child, false) {
				allChildrenGone = false
			}
		}
		if !allChildrenGone {
			return false
		}
	}

	if err := j.Fs.Remove(path); err != nil {
		return j.handleDeleteError(path, err)
	}

	j.Changes.Enqueue(changequeue.Entry{Kind: changequeue.Removed, Path: path})
	if j.Undo != nil {
		j.Undo.AddOriginTargetPair(path, "")
	}
	kind := progress.PhraseDeleting
	if fsremote.ClassifyScheme(path) == fsremote.SpecialRecent {
		kind = progress.PhraseClearing
	}
	if topLevel {
		j.completeItem()
	}
	j.reportProgress(kind, path)
	return true
}

func (j *Job) handleDeleteError(path string, err error) bool {
	if j.SkipAll() {
		j.MarkSkipped(path)
		return false
	}
	resp := j.Dialogs.Ask(dialog.Request{
		Heading: "Error while deleting",
		Body:    path,
		Details: err.Error(),
		Allowed: dialog.AllowSkip | dialog.AllowSkipAll | dialog.AllowCancel,
	}, j.Progress)
	switch resp.Response {
	case dialog.SkipAll:
		j.SetSkipAll()
		fallthrough
	case dialog.Skip:
		j.MarkSkipped(path)
	}
	return false
}

func (j *Job) reportProgress(kind progress.PhraseKind, path string) {
	j.Progress.Report(j.doneItems, 0, false,
		progress.StatusLong(kind, 1), progress.StatusShort(kind, 1),
		progress.TruncateDisplayName(filepath.Base(path)), "")
}

// completeItem advances the job-wide cumulative count of top-level
// sources fully trashed or deleted.
func (j *Job) completeItem() {
	j.doneItems++
}

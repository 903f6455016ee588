// Package copymove implements the Copy/Move engine of §4.2: recursive
// copy or move with conflict resolution, rename-on-collision, and a
// recursive fallback when a single-call move cannot cross filesystems.
package copymove

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/apperrors"
	"github.com/nekomimist/fileopsd/internal/changequeue"
	"github.com/nekomimist/fileopsd/internal/dialog"
	"github.com/nekomimist/fileopsd/internal/job"
	"github.com/nekomimist/fileopsd/internal/progress"
)

// Job is the CopyMoveJob of §3: a job.Job plus the fields specific to
// copy/move/duplicate/link.
type Job struct {
	*job.Job

	Fs afero.Fs

	IsMove          bool
	IsLink          bool // link_async: create a symbolic link instead of copying/moving
	Sources         []string
	Destination     string // empty means duplicate-in-place
	TargetName      string // rename-on-copy, single source only
	UniqueNames     bool   // duplicate mode: always derive a numbered sibling
	ResetPerms      bool   // set once from first source's filesystem (isofs)
	FakeDisplaySrc  string

	cache *job.PolicyCache

	debutingFiles map[string]bool
	uniqueCounter int64

	// doneFiles/doneBytes are the job-wide cumulative totals already
	// completed, kept monotonic across every source so Report (and
	// Snapshot's final check) see real progress on a multi-file job.
	doneFiles int
	doneBytes int64
}

// New constructs a CopyMoveJob.
func New(base *job.Job, fs afero.Fs, isMove bool, sources []string, destination, targetName string, unique bool) *Job {
	return &Job{
		Job:           base,
		Fs:            fs,
		IsMove:        isMove,
		Sources:       sources,
		Destination:   destination,
		TargetName:    targetName,
		UniqueNames:   unique,
		cache:         job.NewPolicyCache(),
		debutingFiles: make(map[string]bool),
	}
}

// NewLink constructs a LinkJob: one symbolic link per source, landing in
// destination under the source's own basename (or targetName for a single
// source), never recursing into directory sources.
func NewLink(base *job.Job, fs afero.Fs, sources []string, destination, targetName string) *Job {
	return &Job{
		Job:           base,
		Fs:            fs,
		IsLink:        true,
		Sources:       sources,
		Destination:   destination,
		TargetName:    targetName,
		cache:         job.NewPolicyCache(),
		debutingFiles: make(map[string]bool),
	}
}

// DebutingFiles returns the map of destination paths newly created by
// this job, value true meaning "was not an overwrite" (§3 invariant).
func (j *Job) DebutingFiles() map[string]bool { return j.debutingFiles }

// Run executes the three-phase data flow of §2 (scan, verify, execute)
// for a copy or move job and returns whether it completed successfully.
func (j *Job) Run() (success bool, err error) {
	j.Start()
	defer func() { j.Finalize(success) }()

	j.InhibitPower("file copy")

	dest := j.Destination
	if dest == "" {
		dest = filepath.Dir(j.Sources[0])
	}

	if len(j.Sources) > 0 {
		if info, _, cerr := j.cache.QueryFSType(j.Sources[0]); cerr == nil && info.TypeTag == "isofs" {
			j.ResetPerms = true
		}
	}

	info, serr := jobScan(j.Job, j.Fs, j.Sources)
	if serr != nil {
		return false, serr
	}
	j.Progress.SetTotals(info.NumFiles, info.NumBytes)

	policy, verr := jobVerify(j.Job, j.Fs, j.cache, dest, info.NumBytes, info.LargestFileBytes)
	if verr != nil {
		return false, verr
	}

	for _, src := range j.Sources {
		if err := j.CheckCancelled(); err != nil {
			return false, err
		}
		if j.IsSkipped(src) {
			continue
		}
		if err := j.copyOrMoveOne(src, dest, policy, true); err != nil {
			if apperrors.IsCanceled(err) {
				return false, err
			}
			// per-file errors below Skip/Cancel have already been
			// resolved by copyOrMoveOne's own dialog handling; a
			// non-nil, non-cancel error here is a hard stop.
			return false, err
		}
	}
	return true, nil
}

// copyOrMoveOne implements the per-file algorithm of §4.2 steps 1-10 for
// one top-level source or recursive child. destDir is the destination
// directory T is computed relative to. topLevel marks whether this is a
// directly user-selected source (for debuting_files bookkeeping).
func (j *Job) copyOrMoveOne(src, destDir string, policy job.DestinationFsPolicy, topLevel bool) error {
	if err := j.CheckCancelled(); err != nil {
		return err
	}

	target := j.computeTarget(src, destDir, topLevel)

	if strings.HasPrefix(target+string(filepath.Separator), src+string(filepath.Separator)) || target == src {
		j.MarkSkipped(src)
		return nil
	}
	if strings.HasPrefix(destDir+string(filepath.Separator), src+string(filepath.Separator)) {
		j.Dialogs.Ask(dialog.Request{
			Heading: "Cannot copy a folder into itself",
			Body:    src,
			Allowed: dialog.AllowCancel,
		}, j.Progress)
		j.MarkSkipped(src)
		return nil
	}

	srcInfo, err := j.Fs.Stat(src)
	if err != nil {
		return apperrors.NewFileSystemError("stat", src, "source vanished", err)
	}

	overwrite := false
	for {
		dstInfo, statErr := j.Fs.Stat(target)
		exists := statErr == nil

		if exists && !overwrite {
			bothDirs := !j.IsLink && srcInfo.IsDir() && dstInfo.IsDir()
			if !bothDirs && !j.IsLink && srcInfo.IsDir() != dstInfo.IsDir() {
				// file <-> directory conflict: force overwrite, the
				// underlying op will fail cleanly and fall into the
				// generic error path.
				overwrite = true
				continue
			}
			if bothDirs {
				if err := j.mergeDirectory(src, target, policy); err != nil {
					return err
				}
				if topLevel {
					j.debutingFiles[target] = false
				}
				return nil
			}

			if j.UniqueNames {
				j.uniqueCounter++
				target = numberedSibling(target, j.uniqueCounter)
				continue
			}

			if j.ReplaceAll() {
				overwrite = true
				continue
			}
			if j.SkipAll() {
				j.MarkSkipped(src)
				return nil
			}

			resp := j.Dialogs.Ask(dialog.Request{
				Heading: fmt.Sprintf("A file named %q already exists", filepath.Base(target)),
				Body:    target,
				Allowed: dialog.AllowCancel | dialog.AllowSkip | dialog.AllowSkipAll | dialog.AllowReplace | dialog.AllowReplaceAll | dialog.AllowRename,
			}, j.Progress)
			switch resp.Response {
			case dialog.ReplaceAll:
				j.SetReplaceAll()
				fallthrough
			case dialog.Replace:
				overwrite = true
				continue
			case dialog.SkipAll:
				j.SetSkipAll()
				fallthrough
			case dialog.Skip:
				j.MarkSkipped(src)
				return nil
			case dialog.Rename:
				if resp.NewName != "" {
					target = filepath.Join(destDir, resp.NewName)
				} else {
					j.uniqueCounter++
					target = numberedSibling(target, j.uniqueCounter)
				}
				continue
			default:
				return apperrors.ErrCanceled
			}
		}

		if j.IsLink {
			return j.linkOne(src, target, overwrite, topLevel, srcInfo.Size())
		}
		if srcInfo.IsDir() {
			return j.copyDirectory(src, target, policy)
		}
		return j.copyFile(src, target, srcInfo, overwrite, topLevel, policy)
	}
}

// copyFile performs the leaf-level copy or move of a single regular file
// (or symlink), with FS-mangling retry and progress reporting.
func (j *Job) copyFile(src, target string, srcInfo os.FileInfo, overwrite, topLevel bool, policy job.DestinationFsPolicy) error {
	mangledOnce := false
	for {
		if err := j.CheckCancelled(); err != nil {
			return err
		}

		var opErr error
		if j.IsMove {
			opErr = j.moveFile(src, target)
		} else {
			opErr = j.copyFileBytes(src, target, srcInfo.Mode())
		}

		if opErr == nil {
			j.Changes.Enqueue(changequeue.Entry{Kind: kindFor(overwrite), Path: target})
			if j.Undo != nil {
				j.Undo.AddOriginTargetPair(src, target)
			}
			if topLevel || !overwrite {
				j.debutingFiles[target] = !overwrite
			}
			if j.ResetPerms {
				_ = j.Fs.Chmod(target, 0o755)
			}
			j.completeFile(srcInfo.Size())
			j.reportFileProgress(src, target, 0)
			return nil
		}

		if !mangledOnce && policy.NeedsMangling() && errors.Is(opErr, apperrors.ErrInvalidFilename) {
			mangledOnce = true
			mangled, changed := policy.Mangle(filepath.Base(target))
			if changed {
				target = filepath.Join(filepath.Dir(target), mangled)
				continue
			}
		}

		resp := j.Dialogs.Ask(dialog.Request{
			Heading: "Error while copying",
			Body:    src,
			Details: opErr.Error(),
			Allowed: dialog.AllowRetry | dialog.AllowSkip | dialog.AllowSkipAll | dialog.AllowCancel,
		}, j.Progress)
		switch resp.Response {
		case dialog.Retry:
			continue
		case dialog.SkipAll:
			j.SetSkipAll()
			fallthrough
		case dialog.Skip:
			j.MarkSkipped(src)
			return nil
		default:
			return apperrors.ErrCanceled
		}
	}
}

// symlinker is afero's capability for filesystems that can create symbolic
// links (OsFs among them); link_async degrades to apperrors.ErrNotSupported
// on a backend that can't, same as any other per-file NotSupported outcome.
type symlinker interface {
	SymlinkIfPossible(oldname, newname string) error
}

// linkOne creates a single symbolic link at target pointing at src, the
// leaf operation for link_async. Unlike copy/move, link never recurses into
// a directory source — the link itself stands in for the whole tree.
func (j *Job) linkOne(src, target string, overwrite, topLevel bool, size int64) error {
	for {
		if err := j.CheckCancelled(); err != nil {
			return err
		}

		var opErr error
		sl, ok := j.Fs.(symlinker)
		if !ok {
			opErr = apperrors.NewFileSystemError("link", target, "destination filesystem cannot create symbolic links", apperrors.ErrNotSupported)
		} else {
			if err := j.Fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return apperrors.NewFileSystemError("link", target, "cannot create parent", err)
			}
			if overwrite {
				_ = j.Fs.Remove(target)
			}
			opErr = sl.SymlinkIfPossible(src, target)
		}
		if opErr == nil {
			j.Changes.Enqueue(changequeue.Entry{Kind: kindFor(overwrite), Path: target})
			if j.Undo != nil {
				j.Undo.AddOriginTargetPair(src, target)
			}
			if topLevel || !overwrite {
				j.debutingFiles[target] = !overwrite
			}
			j.completeFile(size)
			j.reportFileProgress(src, target, 0)
			return nil
		}

		resp := j.Dialogs.Ask(dialog.Request{
			Heading: "Error while creating link",
			Body:    src,
			Details: opErr.Error(),
			Allowed: dialog.AllowRetry | dialog.AllowSkip | dialog.AllowSkipAll | dialog.AllowCancel,
		}, j.Progress)
		switch resp.Response {
		case dialog.Retry:
			continue
		case dialog.SkipAll:
			j.SetSkipAll()
			fallthrough
		case dialog.Skip:
			j.MarkSkipped(src)
			return nil
		default:
			return apperrors.ErrCanceled
		}
	}
}

func kindFor(overwrite bool) changequeue.Kind {
	if overwrite {
		return changequeue.Changed
	}
	return changequeue.Added
}

// moveFile attempts an atomic rename; on a cross-filesystem error, falls
// back to copy-then-delete-source, implementing §4.2 step 8's "WouldRecurse
// ... descend" behavior for the single-file case.
func (j *Job) moveFile(src, target string) error {
	if err := j.Fs.Rename(src, target); err == nil {
		return nil
	}
	srcInfo, serr := j.Fs.Stat(src)
	if serr != nil {
		return apperrors.NewFileSystemError("move", src, "source vanished", serr)
	}
	if err := j.copyFileBytes(src, target, srcInfo.Mode()); err != nil {
		return err
	}
	if err := j.Fs.Remove(src); err != nil {
		j.Dialogs.Ask(dialog.Request{
			Heading: "Could not remove source after move",
			Body:    src,
			Allowed: dialog.AllowSkip | dialog.AllowCancel,
		}, j.Progress)
	}
	return nil
}

func (j *Job) copyFileBytes(src, target string, mode os.FileMode) error {
	in, err := j.Fs.Open(src)
	if err != nil {
		return apperrors.NewFileSystemError("copy", src, "cannot open source", err)
	}
	defer in.Close()

	if err := j.Fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return apperrors.NewFileSystemError("copy", target, "cannot create parent", err)
	}

	tmp := target + ".fileopsd-part"
	out, err := j.Fs.Create(tmp)
	if err != nil {
		return apperrors.NewFileSystemError("copy", tmp, "cannot create destination", err)
	}

	buf := make([]byte, 1<<20)
	var written int64
	for {
		if err := j.CheckCancelled(); err != nil {
			out.Close()
			_ = j.Fs.Remove(tmp)
			return err
		}
		n, rerr := in.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				out.Close()
				_ = j.Fs.Remove(tmp)
				return apperrors.NewFileSystemError("copy", tmp, "write failed", werr)
			}
			written += int64(n)
			j.reportFileProgress(src, target, written)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			out.Close()
			_ = j.Fs.Remove(tmp)
			return apperrors.NewFileSystemError("copy", src, "read failed", rerr)
		}
	}
	if err := out.Close(); err != nil {
		_ = j.Fs.Remove(tmp)
		return apperrors.NewFileSystemError("copy", tmp, "close failed", err)
	}
	_ = j.Fs.Chmod(tmp, mode.Perm())
	if err := j.Fs.Rename(tmp, target); err != nil {
		_ = j.Fs.Remove(tmp)
		return apperrors.NewFileSystemError("copy", target, "rename failed", err)
	}
	return nil
}

// reportFileProgress reports the job-wide cumulative progress: everything
// already completed (j.doneFiles/j.doneBytes) plus written bytes of the
// file currently in flight, keeping Report's totals monotonic across the
// whole job (§5) instead of resetting per file.
func (j *Job) reportFileProgress(src, target string, written int64) {
	kind := progress.PhraseCopying
	switch {
	case j.IsLink:
		kind = progress.PhraseLinking
	case j.IsMove:
		kind = progress.PhraseMoving
	}
	j.Progress.Report(j.doneFiles, j.doneBytes+written, true,
		progress.StatusLong(kind, 1), progress.StatusShort(kind, 1),
		fmt.Sprintf("%s -> %s", progress.TruncateDisplayName(filepath.Base(src)), progress.TruncateDisplayName(filepath.Base(target))),
		target)
}

// completeFile advances the cumulative counters once a source has
// finished copying, moving, or linking.
func (j *Job) completeFile(size int64) {
	j.doneFiles++
	j.doneBytes += size
}

// copyDirectory creates target (retrying through FS mangling) and recurses.
func (j *Job) copyDirectory(src, target string, policy job.DestinationFsPolicy) error {
	err := j.Fs.MkdirAll(target, 0o755)
	if err != nil && policy != nil && policy.NeedsMangling() && errors.Is(err, apperrors.ErrInvalidFilename) {
		if mangled, changed := policy.Mangle(filepath.Base(target)); changed {
			target = filepath.Join(filepath.Dir(target), mangled)
			err = j.Fs.MkdirAll(target, 0o755)
		}
	}
	if err != nil {
		return apperrors.NewFileSystemError("copy", target, "mkdir failed", err)
	}
	j.Changes.Enqueue(changequeue.Entry{Kind: changequeue.Added, Path: target})
	j.debutingFiles[target] = true

	return j.recurseChildren(src, target, policy)
}

// mergeDirectory handles the "both source and target are directories"
// conflict outcome: merge children into the existing target directory.
func (j *Job) mergeDirectory(src, target string, policy job.DestinationFsPolicy) error {
	if !j.MergeAll() {
		resp := j.Dialogs.Ask(dialog.Request{
			Heading: fmt.Sprintf("A folder named %q already exists", filepath.Base(target)),
			Body:    target,
			Allowed: dialog.AllowCancel | dialog.AllowSkip | dialog.AllowSkipAll | dialog.AllowMerge | dialog.AllowMergeAll,
		}, j.Progress)
		switch resp.Response {
		case dialog.MergeAll:
			j.SetMergeAll()
		case dialog.Merge:
			// proceed to merge just this once
		case dialog.SkipAll:
			j.SetSkipAll()
			fallthrough
		case dialog.Skip:
			j.MarkSkipped(src)
			return nil
		default:
			return apperrors.ErrCanceled
		}
	}
	return j.recurseChildren(src, target, policy)
}

func (j *Job) recurseChildren(src, target string, policy job.DestinationFsPolicy) error {
	entries, err := afero.ReadDir(j.Fs, src)
	if err != nil {
		return apperrors.NewFileSystemError("readdir", src, "cannot list source", err)
	}

	anySkipped := false
	for _, e := range entries {
		if err := j.CheckCancelled(); err != nil {
			return err
		}
		childSrc := filepath.Join(src, e.Name())
		if err := j.copyOrMoveOne(childSrc, target, policy, false); err != nil {
			return err
		}
		if j.IsSkipped(childSrc) {
			anySkipped = true
		}
	}

	if j.IsMove && !anySkipped {
		if err := j.CheckCancelled(); err != nil {
			return err
		}
		if err := j.Fs.Remove(src); err != nil {
			j.Dialogs.Ask(dialog.Request{
				Heading: "Could not remove source folder",
				Body:    src,
				Allowed: dialog.AllowSkip | dialog.AllowCancel,
			}, j.Progress)
		}
	}
	return nil
}

// computeTarget implements §4.2 step 2: derive T from duplicate-counter,
// explicit target_name, or the source's basename.
func (j *Job) computeTarget(src, destDir string, topLevel bool) string {
	base := filepath.Base(src)
	if j.UniqueNames && topLevel {
		// Duplicate mode always lands in the same directory as the
		// source under a new name, so the very first candidate is
		// already the first numbered sibling, not the source's own
		// name (which would always collide with itself). Only the
		// top-level source gets renamed; children keep their names
		// once copied into the newly named directory.
		j.uniqueCounter++
		return numberedSibling(filepath.Join(destDir, base), j.uniqueCounter)
	}
	if j.TargetName != "" && len(j.Sources) == 1 && topLevel {
		return filepath.Join(destDir, j.TargetName)
	}
	return filepath.Join(destDir, base)
}

// numberedSibling derives "name (n+1).ext" for duplicate/unique-names mode
// and rename-on-collision, so n == 1 yields "name (2).ext". n == 0 returns
// the original name unchanged (first attempt before any collision is
// detected).
func numberedSibling(path string, n int64) string {
	if n == 0 {
		return path
	}
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n+1, ext))
}

// jobScan/jobVerify are thin forwarding wrappers so this package only
// imports the small surface of internal/job it actually drives, keeping
// the dependency direction copymove -> job one-way.
func jobScan(j *job.Job, fs afero.Fs, sources []string) (*job.SourceInfo, error) {
	return job.ScanSources(j, fs, sources, false, nil)
}

func jobVerify(j *job.Job, fs afero.Fs, cache *job.PolicyCache, dest string, bytes, largest int64) (job.DestinationFsPolicy, error) {
	return job.VerifyDestination(j, fs, cache, dest, bytes, largest)
}

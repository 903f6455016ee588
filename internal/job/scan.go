package job

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/apperrors"
	"github.com/nekomimist/fileopsd/internal/dialog"
)

// scanProgressPulse is how often (in files) the scan pass reports
// progress — "pulses progress every 100 files (not per byte)" (§4.1).
const scanProgressPulse = 100

// DirSubtotal is the per-directory subtotal recorded in
// SourceInfo.scanned_dirs_info.
type DirSubtotal struct {
	NumFilesChildren int
	NumBytesChildren int64
}

// SourceInfo is the result of scan_sources: aggregate counts plus
// per-directory subtotals so a late skip can retract its contribution
// (source_info_remove_file_from_count).
type SourceInfo struct {
	NumFiles              int
	NumBytes              int64
	LargestFileBytes      int64
	NumFilesSinceProgress int
	ScannedDirsInfo       map[string]DirSubtotal
}

func newSourceInfo() *SourceInfo {
	return &SourceInfo{ScannedDirsInfo: make(map[string]DirSubtotal)}
}

// ScanSources walks each top-level source (breadth-first for directories,
// skipping recursion entirely when skipRecurse is true — the Trash
// operation's "the op is not Trash" carve-out) and accumulates a
// SourceInfo. onPulse, if non-nil, is called every scanProgressPulse
// files.
func ScanSources(j *Job, fs afero.Fs, sources []string, skipRecurse bool, onPulse func(*SourceInfo)) (*SourceInfo, error) {
	info := newSourceInfo()
	for _, src := range sources {
		if err := j.CheckCancelled(); err != nil {
			return info, err
		}
		if err := scanOne(j, fs, src, skipRecurse, info, onPulse); err != nil {
			return info, err
		}
	}
	return info, nil
}

func scanOne(j *Job, fs afero.Fs, path string, skipRecurse bool, info *SourceInfo, onPulse func(*SourceInfo)) error {
	for {
		fi, err := fs.Stat(path)
		if err != nil {
			resp := j.Dialogs.Ask(dialog.Request{
				Heading: "Error while scanning",
				Body:    path,
				Allowed: dialog.AllowRetry | dialog.AllowSkip | dialog.AllowSkipAll | dialog.AllowCancel,
			}, j.Progress)
			switch resp.Response {
			case dialog.Retry:
				continue
			case dialog.SkipAll:
				j.SetSkipAllError()
				fallthrough
			case dialog.Skip:
				j.MarkReaddirSkipped(path)
				return nil
			default:
				return apperrors.ErrCanceled
			}
		}

		if fi.IsDir() && !skipRecurse {
			return scanDir(j, fs, path, info, onPulse)
		}

		info.NumFiles++
		info.NumBytes += fi.Size()
		if fi.Size() > info.LargestFileBytes {
			info.LargestFileBytes = fi.Size()
		}
		info.NumFilesSinceProgress++
		if onPulse != nil && info.NumFilesSinceProgress >= scanProgressPulse {
			info.NumFilesSinceProgress = 0
			onPulse(info)
		}
		return nil
	}
}

func scanDir(j *Job, fs afero.Fs, dirPath string, info *SourceInfo, onPulse func(*SourceInfo)) error {
	filesBefore := info.NumFiles
	bytesBefore := info.NumBytes

	for {
		entries, err := afero.ReadDir(fs, dirPath)
		if err != nil {
			resp := j.Dialogs.Ask(dialog.Request{
				Heading: "Error while scanning directory",
				Body:    dirPath,
				Allowed: dialog.AllowRetry | dialog.AllowSkip | dialog.AllowSkipAll | dialog.AllowCancel,
			}, j.Progress)
			switch resp.Response {
			case dialog.Retry:
				continue
			case dialog.SkipAll:
				j.SetSkipAllError()
				fallthrough
			case dialog.Skip:
				j.MarkReaddirSkipped(dirPath)
				return nil
			default:
				return apperrors.ErrCanceled
			}
		}

		for _, e := range entries {
			if err := j.CheckCancelled(); err != nil {
				return err
			}
			child := filepath.Join(dirPath, e.Name())
			if err := scanOne(j, fs, child, false, info, onPulse); err != nil {
				return err
			}
		}
		break
	}

	info.ScannedDirsInfo[dirPath] = DirSubtotal{
		NumFilesChildren: info.NumFiles - filesBefore,
		NumBytesChildren: info.NumBytes - bytesBefore,
	}
	return nil
}

// RemoveFileFromCount retracts a file or directory subtree's contribution
// to info after a late skip, per source_info_remove_file_from_count.
func RemoveFileFromCount(info *SourceInfo, path string, fileBytes int64) {
	if sub, ok := info.ScannedDirsInfo[path]; ok {
		info.NumFiles -= sub.NumFilesChildren
		info.NumBytes -= sub.NumBytesChildren
		delete(info.ScannedDirsInfo, path)
		return
	}
	info.NumFiles--
	info.NumBytes -= fileBytes
}

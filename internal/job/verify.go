package job

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/apperrors"
	"github.com/nekomimist/fileopsd/internal/dialog"
)

// VerifyDestination implements verify_destination (§4.1): confirms the
// destination exists, is a directory, is writable, has enough free space,
// and (if FAT-like) can hold the largest source file. requiredBytes is
// the scan's aggregate byte total.
func VerifyDestination(j *Job, fs afero.Fs, cache *PolicyCache, destPath string, requiredBytes, largestFileBytes int64) (DestinationFsPolicy, error) {
	for {
		fi, err := fs.Stat(destPath)
		if err != nil {
			resp := j.Dialogs.Ask(dialog.Request{
				Heading: "Error while verifying destination",
				Body:    destPath,
				Allowed: dialog.AllowRetry | dialog.AllowCancel,
			}, j.Progress)
			if resp.Response == dialog.Retry {
				continue
			}
			return nil, apperrors.ErrCanceled
		}

		// Two-stage symlink dance: if the destination itself is a
		// symlink, re-resolve by following it once.
		if fi.Mode()&os.ModeSymlink != 0 {
			if resolved, rerr := filepath.EvalSymlinks(destPath); rerr == nil {
				destPath = resolved
				continue
			}
		}

		if !fi.IsDir() {
			return nil, apperrors.NewVerifyError("verify_destination", destPath, "not a directory", apperrors.ErrNotDirectory)
		}
		break
	}

	if !probeWritable(fs, destPath) {
		return nil, apperrors.NewVerifyError("verify_destination", destPath, "read-only destination", apperrors.ErrReadOnly)
	}

	info, policy, err := cache.QueryFSType(destPath)
	if err != nil {
		return nil, apperrors.NewVerifyError("verify_destination", destPath, "filesystem query failed", err)
	}

	if !info.IsRAM && requiredBytes > 0 && info.FreeBytes > 0 && uint64(requiredBytes) > info.FreeBytes {
		for {
			resp := j.Dialogs.Ask(dialog.Request{
				Heading: "There is not enough space on the destination",
				Body:    destPath,
				Allowed: dialog.AllowProceed | dialog.AllowRetry | dialog.AllowCancel,
			}, j.Progress)
			switch resp.Response {
			case dialog.Proceed:
				goto spaceOK
			case dialog.Retry:
				info, policy, err = cache.QueryFSType(destPath)
				if err != nil {
					return nil, apperrors.NewVerifyError("verify_destination", destPath, "filesystem query failed", err)
				}
				if info.IsRAM || uint64(requiredBytes) <= info.FreeBytes {
					goto spaceOK
				}
				continue
			default:
				return nil, apperrors.ErrCanceled
			}
		}
	}
spaceOK:

	if limit, bounded := policy.MaxFileSize(); bounded && largestFileBytes > 0 && uint64(largestFileBytes) > limit {
		resp := j.Dialogs.Ask(dialog.Request{
			Heading: "Files bigger than 4.3 GB cannot be copied onto a FAT filesystem.",
			Body:    destPath,
			Allowed: dialog.AllowProceed | dialog.AllowCancel,
		}, j.Progress)
		if resp.Response != dialog.Proceed {
			return nil, apperrors.ErrCanceled
		}
	}

	return policy, nil
}

// probeWritable checks writability by attempting to create and remove a
// temp file, rather than relying on OS-specific statfs read-only flags
// (see fsinfo_unix.go).
func probeWritable(fs afero.Fs, dir string) bool {
	f, err := afero.TempFile(fs, dir, ".fileopsd-write-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = fs.Remove(name)
	return true
}

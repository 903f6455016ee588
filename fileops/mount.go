package fileops

import (
	"os"

	"github.com/nekomimist/fileopsd/internal/apperrors"
	"github.com/nekomimist/fileopsd/internal/dialog"
	"github.com/nekomimist/fileopsd/internal/job"
	"github.com/nekomimist/fileopsd/internal/trash"
)

// UnmountMountFull is unmount_mount_full: when check_trash is set and the
// mount carries its own trash with items in it, it blocks on an
// Empty-Trash-or-Proceed dialog and, if the user chooses to empty, runs
// that empty synchronously to completion before ever touching the eject
// decision. A later eject/unmount failure or cancellation does NOT undo
// the trash-empty that already ran — these are two independent steps, not
// one transaction (§9 open question).
//
// It runs on its own goroutine rather than through the job registry: it
// isn't one of the registry's Runnable job kinds, just a short sequence of
// at most one dialog, one EmptyJob, and one Ejector call.
func (s *Service) UnmountMountFull(parentWindow interface{}, mount Mount, mountOperation interface{}, eject, checkTrash bool, onDone func(UnmountResult)) {
	go s.unmountMountFull(parentWindow, mount, mountOperation, eject, checkTrash, onDone)
}

func (s *Service) unmountMountFull(parentWindow interface{}, mount Mount, mountOperation interface{}, eject, checkTrash bool, onDone func(UnmountResult)) {
	if checkTrash && mount != nil {
		if roots := mount.TrashRoots(); trashHasItems(roots) {
			reply := s.Dialogs.Ask(dialog.Request{
				Heading: "Empty Trash before ejecting?",
				Allowed: dialog.AllowEmptyTrash | dialog.AllowProceed | dialog.AllowCancel,
			}, nil)
			switch reply.Response {
			case dialog.Cancel:
				if onDone != nil {
					onDone(UnmountResult{Success: false, Err: apperrors.ErrCanceled})
				}
				return
			case dialog.EmptyTrash:
				base := s.newJob(job.KindEmptyTrash, parentWindow, nil, "")
				trash.NewEmptyJob(base, roots, false).Run()
			}
		}
	}

	if s.Ejector == nil {
		if onDone != nil {
			onDone(UnmountResult{Success: false, Err: apperrors.NewMountError("unmount_mount_full", "", "no mount capability wired", apperrors.ErrNotSupported)})
		}
		return
	}

	var err error
	if eject {
		err = s.Ejector.Eject(mount, mountOperation)
	} else {
		err = s.Ejector.Unmount(mount, mountOperation)
	}
	if onDone != nil {
		onDone(UnmountResult{Success: err == nil, Err: err})
	}
}

func trashHasItems(roots []string) bool {
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err == nil && len(entries) > 0 {
			return true
		}
	}
	return false
}

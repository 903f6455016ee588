package fileops

import (
	"os"

	"github.com/nekomimist/fileopsd/internal/create"
	"github.com/nekomimist/fileopsd/internal/job"
	"github.com/nekomimist/fileopsd/internal/jobs"
	"github.com/nekomimist/fileopsd/internal/undo"
)

// SetPermissionsRecursive is set_permissions_recursive. No parent_window or
// dbus parameter in §6's signature, so no interactivity handle is carried
// to the job's dialog flow — a filesystem error mid-walk still goes
// through the usual Skip/Skip-all/Cancel protocol, just without the
// parenting hint a foreign-window dialog would otherwise use.
func (s *Service) SetPermissionsRecursive(dirURI string, fileValue, fileMask, dirValue, dirMask os.FileMode, onDone func(PermissionsResult)) *jobs.Handle {
	base := s.newJob(job.KindSetPermissions, nil, nil, undo.OpRecPermissions)
	j := create.NewPermissionsJob(base, s.Fs, dirURI, fileValue, fileMask, dirValue, dirMask)
	run := runnableFunc(func() (bool, error) {
		ok, err := j.Run()
		if onDone != nil {
			onDone(PermissionsResult{Success: ok, NumApplied: j.NumApplied, Err: err})
		}
		return ok, err
	})
	return s.Jobs.Launch(job.KindSetPermissions, base, run)
}

// SetPermissionsRecursiveSync runs set_permissions_recursive's job inline.
func (s *Service) SetPermissionsRecursiveSync(dirURI string, fileValue, fileMask, dirValue, dirMask os.FileMode) PermissionsResult {
	base := s.newJob(job.KindSetPermissions, nil, nil, undo.OpRecPermissions)
	j := create.NewPermissionsJob(base, s.Fs, dirURI, fileValue, fileMask, dirValue, dirMask)
	ok, err := j.Run()
	return PermissionsResult{Success: ok, NumApplied: j.NumApplied, Err: err}
}

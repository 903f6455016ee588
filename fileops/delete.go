package fileops

import (
	"github.com/nekomimist/fileopsd/internal/job"
	"github.com/nekomimist/fileopsd/internal/jobs"
	"github.com/nekomimist/fileopsd/internal/trash"
	"github.com/nekomimist/fileopsd/internal/undo"
)

func deleteDone(j *trash.Job, onDone func(DeleteResult)) runnableFunc {
	return func() (bool, error) {
		ok, err := j.Run()
		if onDone != nil {
			onDone(DeleteResult{Success: ok, UserCancel: j.UserCancel, Err: err})
		}
		return ok, err
	}
}

// TrashOrDeleteAsync is trash_or_delete_async: partitions sources into
// trash-or-delete per §4.3 and records an undoable trash op for whatever
// ends up trashed.
func (s *Service) TrashOrDeleteAsync(sources []string, parentWindow, dbus interface{}, onDone func(DeleteResult)) *jobs.Handle {
	base := s.newJob(job.KindTrash, parentWindow, dbus, undo.OpTrash)
	j := trash.New(base, s.Fs, s.Trasher, sources, true, trash.AutoConfirm{})
	return s.Jobs.Launch(job.KindTrash, base, deleteDone(j, onDone))
}

// TrashOrDeleteSync runs trash_or_delete_async's job inline.
func (s *Service) TrashOrDeleteSync(sources []string, parentWindow, dbus interface{}) DeleteResult {
	base := s.newJob(job.KindTrash, parentWindow, dbus, undo.OpTrash)
	j := trash.New(base, s.Fs, s.Trasher, sources, true, trash.AutoConfirm{})
	ok, err := j.Run()
	return DeleteResult{Success: ok, UserCancel: j.UserCancel, Err: err}
}

// DeleteAsync is delete_async: a forced permanent delete, never routed
// through trash. Permanent deletion isn't restorable, so no undo builder
// is attached — attaching OpTrash here would record origin/target pairs
// restore_from_trash can never make good on.
func (s *Service) DeleteAsync(sources []string, parentWindow, dbus interface{}, onDone func(DeleteResult)) *jobs.Handle {
	base := s.newJob(job.KindDelete, parentWindow, dbus, "")
	j := trash.New(base, s.Fs, s.Trasher, sources, false, trash.AutoConfirm{})
	return s.Jobs.Launch(job.KindDelete, base, deleteDone(j, onDone))
}

// DeleteSync runs delete_async's job inline.
func (s *Service) DeleteSync(sources []string, parentWindow, dbus interface{}) DeleteResult {
	base := s.newJob(job.KindDelete, parentWindow, dbus, "")
	j := trash.New(base, s.Fs, s.Trasher, sources, false, trash.AutoConfirm{})
	ok, err := j.Run()
	return DeleteResult{Success: ok, UserCancel: j.UserCancel, Err: err}
}

// EmptyTrash is empty_trash: no on_done per §6's signature, since the host
// polls the launched handle (or the change queue's Removed entries) for
// completion instead.
func (s *Service) EmptyTrash(parentView interface{}, askConfirmation bool, dbus interface{}) *jobs.Handle {
	roots := s.trashRoots()
	base := s.newJob(job.KindEmptyTrash, parentView, dbus, "")
	j := trash.NewEmptyJob(base, roots, askConfirmation)
	return s.Jobs.Launch(job.KindEmptyTrash, base, runnableFunc(j.Run))
}

func (s *Service) trashRoots() []string {
	if s.TrashRoots == nil {
		return nil
	}
	roots, err := s.TrashRoots.Roots()
	if err != nil {
		return nil
	}
	return roots
}

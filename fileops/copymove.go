package fileops

import (
	"github.com/nekomimist/fileopsd/internal/apperrors"
	"github.com/nekomimist/fileopsd/internal/copymove"
	"github.com/nekomimist/fileopsd/internal/fsremote"
	"github.com/nekomimist/fileopsd/internal/job"
	"github.com/nekomimist/fileopsd/internal/jobs"
	"github.com/nekomimist/fileopsd/internal/undo"
)

// Action selects which of copy_move's three behaviors the dispatcher runs,
// per §6's `action ∈ {Copy, Move, Link}`.
type Action int

const (
	ActionCopy Action = iota
	ActionMove
	ActionLink
)

func copyMoveDone(j *copymove.Job, onDone func(CopyMoveResult)) runnableFunc {
	return func() (bool, error) {
		ok, err := j.Run()
		if onDone != nil {
			onDone(CopyMoveResult{Success: ok, DebutingFiles: j.DebutingFiles(), Err: err})
		}
		return ok, err
	}
}

// CopyAsync is copy_async: launches a non-recursive-cancelling copy job on
// its own goroutine and returns immediately.
func (s *Service) CopyAsync(sources []string, targetDir string, parentWindow, dbus interface{}, onDone func(CopyMoveResult)) *jobs.Handle {
	base := s.newJob(job.KindCopy, parentWindow, dbus, undo.OpCopy)
	j := copymove.New(base, s.Fs, false, sources, targetDir, "", false)
	return s.Jobs.Launch(job.KindCopy, base, copyMoveDone(j, onDone))
}

// CopySync runs copy_async's job inline and blocks until it finishes.
func (s *Service) CopySync(sources []string, targetDir string, parentWindow, dbus interface{}) CopyMoveResult {
	base := s.newJob(job.KindCopy, parentWindow, dbus, undo.OpCopy)
	j := copymove.New(base, s.Fs, false, sources, targetDir, "", false)
	ok, err := j.Run()
	return CopyMoveResult{Success: ok, DebutingFiles: j.DebutingFiles(), Err: err}
}

// MoveAsync is move_async.
func (s *Service) MoveAsync(sources []string, targetDir string, parentWindow, dbus interface{}, onDone func(CopyMoveResult)) *jobs.Handle {
	base := s.newJob(job.KindMove, parentWindow, dbus, undo.OpMove)
	j := copymove.New(base, s.Fs, true, sources, targetDir, "", false)
	return s.Jobs.Launch(job.KindMove, base, copyMoveDone(j, onDone))
}

// MoveSync runs move_async's job inline and blocks until it finishes.
func (s *Service) MoveSync(sources []string, targetDir string, parentWindow, dbus interface{}) CopyMoveResult {
	base := s.newJob(job.KindMove, parentWindow, dbus, undo.OpMove)
	j := copymove.New(base, s.Fs, true, sources, targetDir, "", false)
	ok, err := j.Run()
	return CopyMoveResult{Success: ok, DebutingFiles: j.DebutingFiles(), Err: err}
}

// DuplicateAsync is duplicate_async: each source lands beside itself under
// a numbered sibling name, never in a caller-chosen target_dir.
func (s *Service) DuplicateAsync(sources []string, parentWindow, dbus interface{}, onDone func(CopyMoveResult)) *jobs.Handle {
	base := s.newJob(job.KindDuplicate, parentWindow, dbus, undo.OpDuplicate)
	j := copymove.New(base, s.Fs, false, sources, "", "", true)
	return s.Jobs.Launch(job.KindDuplicate, base, copyMoveDone(j, onDone))
}

// DuplicateSync runs duplicate_async's job inline and blocks until done.
func (s *Service) DuplicateSync(sources []string, parentWindow, dbus interface{}) CopyMoveResult {
	base := s.newJob(job.KindDuplicate, parentWindow, dbus, undo.OpDuplicate)
	j := copymove.New(base, s.Fs, false, sources, "", "", true)
	ok, err := j.Run()
	return CopyMoveResult{Success: ok, DebutingFiles: j.DebutingFiles(), Err: err}
}

// LinkAsync is link_async: one symbolic link per source, landing in
// targetDir.
func (s *Service) LinkAsync(sources []string, targetDir string, parentWindow, dbus interface{}, onDone func(CopyMoveResult)) *jobs.Handle {
	base := s.newJob(job.KindLink, parentWindow, dbus, undo.OpCreateLink)
	j := copymove.NewLink(base, s.Fs, sources, targetDir, "")
	return s.Jobs.Launch(job.KindLink, base, copyMoveDone(j, onDone))
}

// LinkSync runs link_async's job inline and blocks until it finishes.
func (s *Service) LinkSync(sources []string, targetDir string, parentWindow, dbus interface{}) CopyMoveResult {
	base := s.newJob(job.KindLink, parentWindow, dbus, undo.OpCreateLink)
	j := copymove.NewLink(base, s.Fs, sources, targetDir, "")
	ok, err := j.Run()
	return CopyMoveResult{Success: ok, DebutingFiles: j.DebutingFiles(), Err: err}
}

// CopyMove is the scheme-gated dispatcher of §12: it classifies
// targetDirURI before ever constructing a job, redirecting to the tagging
// subsystem or the trash engine when the destination names one of those
// special sinks, and otherwise dispatches by action to the three entry
// points above.
func (s *Service) CopyMove(sources []string, targetDirURI string, action Action, parentView, dbus interface{}, onDone func(CopyMoveResult)) *jobs.Handle {
	switch fsremote.ClassifyScheme(targetDirURI) {
	case fsremote.SpecialStarred:
		s.starSources(sources, onDone)
		return nil
	case fsremote.SpecialTrash:
		return s.TrashOrDeleteAsync(sources, parentView, dbus, func(r DeleteResult) {
			if onDone != nil {
				onDone(CopyMoveResult{Success: r.Success, Err: r.Err})
			}
		})
	}

	switch action {
	case ActionMove:
		return s.MoveAsync(sources, targetDirURI, parentView, dbus, onDone)
	case ActionLink:
		return s.LinkAsync(sources, targetDirURI, parentView, dbus, onDone)
	default:
		return s.CopyAsync(sources, targetDirURI, parentView, dbus, onDone)
	}
}

// starSources applies the SCHEME_STARRED redirect: a tag mutation per
// source, run synchronously on the calling goroutine since there is no job
// to launch and nothing for the undo manager to record (§9 open question).
func (s *Service) starSources(sources []string, onDone func(CopyMoveResult)) {
	if s.Tagger == nil {
		if onDone != nil {
			onDone(CopyMoveResult{Success: false, Err: apperrors.NewJobError("copy_move", "", "no tagging capability wired for starred destination", apperrors.ErrNotSupported)})
		}
		return
	}
	var firstErr error
	for _, src := range sources {
		if err := s.Tagger.Star(src); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if onDone != nil {
		onDone(CopyMoveResult{Success: firstErr == nil, Err: firstErr})
	}
}

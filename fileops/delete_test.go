package fileops

import (
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/dialog"
	"github.com/nekomimist/fileopsd/internal/jobs"
)

type fakeTrasher struct {
	trashed []string
}

func (f *fakeTrasher) Trash(path string) (string, error) {
	f.trashed = append(f.trashed, path)
	return "/trash/" + path, nil
}

func (f *fakeTrasher) RestoreFromTrash(trashedPath, originalPath string) error { return nil }

func TestTrashOrDeleteSync(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.Delete})
	trasher := &fakeTrasher{}
	s.Trasher = trasher
	_ = afero.WriteFile(s.Fs, "/src/a.txt", []byte("x"), 0o644)

	r := s.TrashOrDeleteSync([]string{"/src/a.txt"}, nil, nil)
	if !r.Success || r.Err != nil {
		t.Fatalf("expected success, got %+v", r)
	}
	if len(trasher.trashed) != 1 {
		t.Errorf("expected one item trashed, got %v", trasher.trashed)
	}
}

func TestDeleteAsyncHasNoUndoAttached(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.Delete})
	_ = afero.WriteFile(s.Fs, "/src/a.txt", []byte("x"), 0o644)

	done := make(chan DeleteResult, 1)
	s.DeleteAsync([]string{"/src/a.txt"}, nil, nil, func(r DeleteResult) { done <- r })
	r := <-done

	if !r.Success || r.Err != nil {
		t.Fatalf("expected success, got %+v", r)
	}
	if s.Undo.CanUndo() {
		t.Error("a forced permanent delete must not be recorded on the undo stack")
	}
}

type fakeTrashRoots struct {
	roots []string
	err   error
}

func (f *fakeTrashRoots) Roots() ([]string, error) { return f.roots, f.err }

// waitForHandle polls a launched handle's snapshot until it leaves
// StatusRunning, since empty_trash (unlike every other async entry point)
// has no on_done callback per §6's signature.
func waitForHandle(t *testing.T, h *jobs.Handle) jobs.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := h.Snapshot()
		if snap.Status != jobs.StatusRunning {
			return snap
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("empty_trash job did not finish in time")
	return jobs.Snapshot{}
}

func TestEmptyTrashCompletesWithNoRootsWired(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.EmptyTrash})

	h := s.EmptyTrash(nil, true, nil)
	snap := waitForHandle(t, h)
	if snap.Status != jobs.StatusCompleted {
		t.Errorf("empty_trash over zero roots should still complete, got %+v", snap)
	}
}

func TestEmptyTrashCancelled(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.Cancel})
	s.TrashRoots = &fakeTrashRoots{roots: []string{"/trash/files"}}

	h := s.EmptyTrash(nil, true, nil)
	snap := waitForHandle(t, h)
	if snap.Status != jobs.StatusCanceled {
		t.Errorf("expected empty_trash to be cancelled, got %+v", snap)
	}
}

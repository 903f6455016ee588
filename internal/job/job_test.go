package job

import (
	"testing"

	"github.com/nekomimist/fileopsd/internal/changequeue"
	"github.com/nekomimist/fileopsd/internal/dialog"
)

func newTestJob(reply dialog.Reply) *Job {
	svc := dialog.NewService(dialog.AutoPresenter{Reply: reply})
	return New(KindCopy, nil, nil, changequeue.New(), svc)
}

func TestJobLifecycle(t *testing.T) {
	j := newTestJob(dialog.Reply{Response: dialog.Cancel})
	j.Start()
	if j.Cancelled() {
		t.Error("new job should not be cancelled")
	}
	j.Abort()
	if !j.Cancelled() {
		t.Error("job should be cancelled after Abort")
	}
	if j.CheckCancelled() == nil {
		t.Error("CheckCancelled should return an error once aborted")
	}
}

func TestJobSkipFlags(t *testing.T) {
	j := newTestJob(dialog.Reply{Response: dialog.Cancel})
	if j.SkipAll() {
		t.Error("SkipAll should default to false")
	}
	j.SetSkipAll()
	if !j.SkipAll() {
		t.Error("SetSkipAll should latch the flag")
	}

	j.MarkSkipped("/a")
	if !j.IsSkipped("/a") {
		t.Error("expected /a to be marked skipped")
	}
	if j.IsSkipped("/b") {
		t.Error("did not expect /b to be marked skipped")
	}
}

func TestFinalizeCommitsUndoOnSuccess(t *testing.T) {
	j := newTestJob(dialog.Reply{Response: dialog.Cancel})
	u := &fakeUndo{}
	j.Undo = u
	j.Finalize(true)
	if !u.committed || u.discarded {
		t.Errorf("expected commit only, got committed=%v discarded=%v", u.committed, u.discarded)
	}
}

func TestFinalizeDiscardsUndoOnFailure(t *testing.T) {
	j := newTestJob(dialog.Reply{Response: dialog.Cancel})
	u := &fakeUndo{}
	j.Undo = u
	j.Finalize(false)
	if u.committed || !u.discarded {
		t.Errorf("expected discard only, got committed=%v discarded=%v", u.committed, u.discarded)
	}
}

type fakeUndo struct {
	committed, discarded bool
}

func (f *fakeUndo) AddOriginTargetPair(origin, target string)       {}
func (f *fakeUndo) AddPermissionsChange(path string, old, new uint32) {}
func (f *fakeUndo) Commit()                                          { f.committed = true }
func (f *fakeUndo) Discard()                                         { f.discarded = true }

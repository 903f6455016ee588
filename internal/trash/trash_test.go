package trash

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/apperrors"
	"github.com/nekomimist/fileopsd/internal/changequeue"
	"github.com/nekomimist/fileopsd/internal/dialog"
	"github.com/nekomimist/fileopsd/internal/job"
)

type fakeTrasher struct {
	supported bool
	trashed   []string
}

func (f *fakeTrasher) Trash(path string) (string, error) {
	if !f.supported {
		return "", apperrors.ErrNotSupported
	}
	f.trashed = append(f.trashed, path)
	return "/trash/" + path, nil
}

func newTestJob(reply dialog.Reply, queue *changequeue.Queue) *job.Job {
	svc := dialog.NewService(dialog.AutoPresenter{Reply: reply})
	return job.New(job.KindDelete, nil, nil, queue, svc)
}

func TestDeleteRecursivePermanent(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll("/d/sub", 0o755)
	_ = afero.WriteFile(fs, "/d/a.txt", []byte("x"), 0o644)
	_ = afero.WriteFile(fs, "/d/sub/b.txt", []byte("y"), 0o644)

	queue := changequeue.New()
	dj := New(newTestJob(dialog.Reply{Response: dialog.Delete}, queue), fs, nil, []string{"/d"}, false, AutoConfirm{Testing: true})
	dj.AskConfirmation = false

	success, err := dj.Run()
	if err != nil || !success {
		t.Fatalf("expected success, got success=%v err=%v", success, err)
	}
	if _, err := fs.Stat("/d"); err == nil {
		t.Error("expected /d to be removed")
	}
	if queue.Len() == 0 {
		t.Error("expected at least one ChangeEntry")
	}
}

func TestTrashFallsBackToDeleteOnNotSupported(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/f.txt", []byte("x"), 0o644)

	queue := changequeue.New()
	tr := &fakeTrasher{supported: false}
	dj := New(newTestJob(dialog.Reply{Response: dialog.Delete}, queue), fs, tr, []string{"/f.txt"}, true, AutoConfirm{})
	dj.AskConfirmation = false

	success, err := dj.Run()
	if err != nil || !success {
		t.Fatalf("expected success, got success=%v err=%v", success, err)
	}
	if _, err := fs.Stat("/f.txt"); err == nil {
		t.Error("expected /f.txt to be permanently deleted")
	}
}

func TestTrashSucceedsWhenSupported(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/f.txt", []byte("x"), 0o644)

	queue := changequeue.New()
	tr := &fakeTrasher{supported: true}
	dj := New(newTestJob(dialog.Reply{Response: dialog.Delete}, queue), fs, tr, []string{"/f.txt"}, true, AutoConfirm{})
	dj.AskConfirmation = false

	success, err := dj.Run()
	if err != nil || !success {
		t.Fatalf("expected success, got success=%v err=%v", success, err)
	}
	if len(tr.trashed) != 1 || tr.trashed[0] != "/f.txt" {
		t.Errorf("expected /f.txt to be trashed, got %v", tr.trashed)
	}
}

func TestAllSkippedMarksUserCancel(t *testing.T) {
	fs := afero.NewMemMapFs()
	queue := changequeue.New()
	dj := New(newTestJob(dialog.Reply{Response: dialog.Skip}, queue), fs, nil, []string{"/missing"}, false, AutoConfirm{Testing: true})
	dj.AskConfirmation = false

	// /missing doesn't exist: Fs.Stat fails inside deleteRecursive, which
	// returns false without marking skipped, so allSkipped still ends up
	// true because nothing succeeded.
	success, _ := dj.Run()
	if success {
		t.Error("expected failure when nothing could be deleted")
	}
	if !dj.UserCancel {
		t.Error("expected UserCancel to be set when every source failed")
	}
}

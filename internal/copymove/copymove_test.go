package copymove

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/changequeue"
	"github.com/nekomimist/fileopsd/internal/dialog"
	"github.com/nekomimist/fileopsd/internal/job"
)

func newTestJob(kind job.Kind, reply dialog.Reply, queue *changequeue.Queue) *job.Job {
	svc := dialog.NewService(dialog.AutoPresenter{Reply: reply})
	return job.New(kind, nil, nil, queue, svc)
}

func TestCopySingleFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/src/a.txt", []byte("hi"), 0o644)
	_ = fs.MkdirAll("/dst", 0o755)
	queue := changequeue.New()

	j := New(newTestJob(job.KindCopy, dialog.Reply{}, queue), fs, false, []string{"/src/a.txt"}, "/dst", "", false)
	success, err := j.Run()
	if err != nil || !success {
		t.Fatalf("expected success, got success=%v err=%v", success, err)
	}
	if exists, _ := afero.Exists(fs, "/src/a.txt"); !exists {
		t.Error("copy must leave the source in place")
	}
	data, err := afero.ReadFile(fs, "/dst/a.txt")
	if err != nil || string(data) != "hi" {
		t.Fatalf("expected /dst/a.txt with contents 'hi', got %q err=%v", data, err)
	}
	if ok := j.DebutingFiles()["/dst/a.txt"]; !ok {
		t.Error("expected /dst/a.txt marked as a debuting (non-overwrite) file")
	}
}

func TestMoveRemovesSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/src/a.txt", []byte("hi"), 0o644)
	_ = fs.MkdirAll("/dst", 0o755)
	queue := changequeue.New()

	j := New(newTestJob(job.KindMove, dialog.Reply{}, queue), fs, true, []string{"/src/a.txt"}, "/dst", "", false)
	success, err := j.Run()
	if err != nil || !success {
		t.Fatalf("expected success, got success=%v err=%v", success, err)
	}
	if exists, _ := afero.Exists(fs, "/src/a.txt"); exists {
		t.Error("move must remove the source")
	}
	if exists, _ := afero.Exists(fs, "/dst/a.txt"); !exists {
		t.Error("move must produce the destination")
	}
}

func TestCopyConflictReplace(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/src/a.txt", []byte("new"), 0o644)
	_ = afero.WriteFile(fs, "/dst/a.txt", []byte("old"), 0o644)
	queue := changequeue.New()

	j := New(newTestJob(job.KindCopy, dialog.Reply{Response: dialog.Replace}, queue), fs, false, []string{"/src/a.txt"}, "/dst", "", false)
	success, err := j.Run()
	if err != nil || !success {
		t.Fatalf("expected success, got success=%v err=%v", success, err)
	}
	data, _ := afero.ReadFile(fs, "/dst/a.txt")
	if string(data) != "new" {
		t.Fatalf("expected Replace to overwrite with the new contents, got %q", data)
	}
	if ok, exists := j.DebutingFiles()["/dst/a.txt"]; !exists || ok {
		t.Errorf("expected /dst/a.txt marked as an overwrite (debuting=false), got exists=%v ok=%v", exists, ok)
	}
}

func TestCopyConflictSkip(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/src/a.txt", []byte("new"), 0o644)
	_ = afero.WriteFile(fs, "/dst/a.txt", []byte("old"), 0o644)
	queue := changequeue.New()

	j := New(newTestJob(job.KindCopy, dialog.Reply{Response: dialog.Skip}, queue), fs, false, []string{"/src/a.txt"}, "/dst", "", false)
	success, err := j.Run()
	if err != nil || !success {
		t.Fatalf("expected success, got success=%v err=%v", success, err)
	}
	data, _ := afero.ReadFile(fs, "/dst/a.txt")
	if string(data) != "old" {
		t.Fatalf("expected Skip to leave the destination untouched, got %q", data)
	}
}

func TestLinkDegradesToNotSupportedOnPlainFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/src/a.txt", []byte("hi"), 0o644)
	_ = fs.MkdirAll("/dst", 0o755)
	queue := changequeue.New()

	j := NewLink(newTestJob(job.KindLink, dialog.Reply{Response: dialog.Skip}, queue), fs, []string{"/src/a.txt"}, "/dst", "")
	success, err := j.Run()
	if err != nil || !success {
		t.Fatalf("expected Skip to still report overall success, got success=%v err=%v", success, err)
	}
	if exists, _ := afero.Exists(fs, "/dst/a.txt"); exists {
		t.Error("a skipped link must not produce a destination entry")
	}
}

type symlinkFs struct {
	afero.Fs
	links map[string]string
}

func (s *symlinkFs) SymlinkIfPossible(oldname, newname string) error {
	s.links[newname] = oldname
	return afero.WriteFile(s.Fs, newname, []byte("symlink:"+oldname), 0o777)
}

func TestLinkCreatesSymlinkOnCapableFs(t *testing.T) {
	fs := &symlinkFs{Fs: afero.NewMemMapFs(), links: make(map[string]string)}
	_ = afero.WriteFile(fs, "/src/a.txt", []byte("hi"), 0o644)
	_ = fs.MkdirAll("/dst", 0o755)
	queue := changequeue.New()

	j := NewLink(newTestJob(job.KindLink, dialog.Reply{}, queue), fs, []string{"/src/a.txt"}, "/dst", "")
	success, err := j.Run()
	if err != nil || !success {
		t.Fatalf("expected success, got success=%v err=%v", success, err)
	}
	if target, ok := fs.links["/dst/a.txt"]; !ok || target != "/src/a.txt" {
		t.Errorf("expected a link /dst/a.txt -> /src/a.txt, got %+v", fs.links)
	}
	if queue.Len() == 0 {
		t.Error("expected at least one ChangeEntry enqueued")
	}
}

func TestDuplicateCreatesNumberedSibling(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/src/a.txt", []byte("hi"), 0o644)
	queue := changequeue.New()

	j := New(newTestJob(job.KindDuplicate, dialog.Reply{}, queue), fs, false, []string{"/src/a.txt"}, "", "", true)
	success, err := j.Run()
	if err != nil || !success {
		t.Fatalf("expected success, got success=%v err=%v", success, err)
	}
	entries, err := afero.ReadDir(fs, "/src")
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected two entries in /src after duplicate, got %v err=%v", entries, err)
	}
}

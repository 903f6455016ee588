package fileops

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/dialog"
)

type fakeRecent struct {
	registered []string
}

func (f *fakeRecent) Register(uri string) { f.registered = append(f.registered, uri) }

func TestNewFolder(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.Cancel})
	_ = s.Fs.MkdirAll("/parent", 0o755)

	done := make(chan CreateResult, 1)
	s.NewFolder(nil, nil, "/parent", "New Folder", func(r CreateResult) { done <- r })
	r := <-done

	if !r.Success || r.Err != nil {
		t.Fatalf("expected success, got %+v", r)
	}
	info, err := s.Fs.Stat(r.CreatedFile)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected %s to be a directory, stat err=%v", r.CreatedFile, err)
	}
}

func TestNewFileWritesInitialContents(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.Cancel})
	recent := &fakeRecent{}
	s.Recent = recent
	_ = s.Fs.MkdirAll("/parent", 0o755)

	done := make(chan CreateResult, 1)
	s.NewFile(nil, "/parent", "note.txt", []byte("hello"), func(r CreateResult) { done <- r })
	r := <-done

	if !r.Success || r.Err != nil {
		t.Fatalf("expected success, got %+v", r)
	}
	data, err := afero.ReadFile(s.Fs, r.CreatedFile)
	if err != nil || string(data) != "hello" {
		t.Fatalf("expected contents 'hello', got %q err=%v", data, err)
	}
	if len(recent.registered) != 1 {
		t.Errorf("expected the new file registered as recent, got %v", recent.registered)
	}
}

func TestRenameSync(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.Cancel})
	_ = afero.WriteFile(s.Fs, "/parent/old.txt", []byte("x"), 0o644)

	r := s.RenameSync("/parent/old.txt", "new.txt", nil, nil)
	if !r.Success || r.Cancelled || r.Err != nil {
		t.Fatalf("expected success, got %+v", r)
	}
	if exists, _ := afero.Exists(s.Fs, "/parent/new.txt"); !exists {
		t.Error("expected /parent/new.txt to exist after rename")
	}
}

func TestPasteImageFromClipboardNoCapabilityWired(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.Cancel})

	done := make(chan CreateResult, 1)
	h := s.PasteImageFromClipboard(nil, nil, "/parent", func(r CreateResult) { done <- r })
	if h != nil {
		t.Errorf("expected no handle when no clipboard capability is wired")
	}
	r := <-done
	if r.Success {
		t.Error("expected failure with no clipboard capability wired")
	}
}

type fakeClipboard struct {
	data []byte
	name string
	ok   bool
}

func (f *fakeClipboard) ImageBytes() ([]byte, string, bool) { return f.data, f.name, f.ok }

func TestPasteImageFromClipboard(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.Cancel})
	s.Clipboard = &fakeClipboard{data: []byte{0x89, 'P', 'N', 'G'}, name: "screenshot", ok: true}
	_ = s.Fs.MkdirAll("/parent", 0o755)

	done := make(chan CreateResult, 1)
	s.PasteImageFromClipboard(nil, nil, "/parent", func(r CreateResult) { done <- r })
	r := <-done

	if !r.Success || r.Err != nil {
		t.Fatalf("expected success, got %+v", r)
	}
	if got := r.CreatedFile; got != "/parent/screenshot.png" {
		t.Errorf("expected /parent/screenshot.png, got %s", got)
	}
}

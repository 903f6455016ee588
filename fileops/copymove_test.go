package fileops

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/dialog"
)

func TestCopyAsync(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.Cancel})
	_ = afero.WriteFile(s.Fs, "/src/a.txt", []byte("hi"), 0o644)
	_ = s.Fs.MkdirAll("/dst", 0o755)

	done := make(chan CopyMoveResult, 1)
	s.CopyAsync([]string{"/src/a.txt"}, "/dst", nil, nil, func(r CopyMoveResult) { done <- r })
	r := <-done

	if !r.Success || r.Err != nil {
		t.Fatalf("expected success, got %+v", r)
	}
	if ok, exists := r.DebutingFiles["/dst/a.txt"]; !exists || !ok {
		t.Errorf("expected /dst/a.txt marked debuting, got %+v", r.DebutingFiles)
	}
	if exists, _ := afero.Exists(s.Fs, "/src/a.txt"); !exists {
		t.Error("copy must not remove the source")
	}
}

func TestDuplicateSync(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.Cancel})
	_ = afero.WriteFile(s.Fs, "/src/a.txt", []byte("hi"), 0o644)

	r := s.DuplicateSync([]string{"/src/a.txt"}, nil, nil)
	if !r.Success {
		t.Fatalf("expected success, got %+v", r)
	}
	entries, err := afero.ReadDir(s.Fs, "/src")
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected two entries in /src after duplicate, got %v err=%v", entries, err)
	}
}

func TestLinkAsyncUnsupportedFilesystem(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.Skip})
	_ = afero.WriteFile(s.Fs, "/src/a.txt", []byte("hi"), 0o644)
	_ = s.Fs.MkdirAll("/dst", 0o755)

	done := make(chan CopyMoveResult, 1)
	s.LinkAsync([]string{"/src/a.txt"}, "/dst", nil, nil, func(r CopyMoveResult) { done <- r })
	r := <-done

	// MemMapFs has no SymlinkIfPossible: linkOne degrades to
	// apperrors.ErrNotSupported, surfaced through Skip since the
	// AutoPresenter always answers Skip here.
	if !r.Success {
		t.Fatalf("expected Skip to still report overall success, got %+v", r)
	}
}

func TestLinkAsyncSymlinkCapableFilesystem(t *testing.T) {
	fs := newSymlinkFs()
	_ = afero.WriteFile(fs, "/src/a.txt", []byte("hi"), 0o644)
	_ = fs.MkdirAll("/dst", 0o755)

	s := NewService(fs)
	s.Dialogs = dialog.NewService(dialog.AutoPresenter{Reply: dialog.Reply{Response: dialog.Cancel}})

	r := s.LinkSync([]string{"/src/a.txt"}, "/dst", nil, nil)
	if !r.Success || r.Err != nil {
		t.Fatalf("expected success, got %+v", r)
	}
	if target, ok := fs.links["/dst/a.txt"]; !ok || target != "/src/a.txt" {
		t.Errorf("expected a link recorded /dst/a.txt -> /src/a.txt, got %+v", fs.links)
	}
}

func TestCopyMoveStarredDestination(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.Cancel})
	tagger := &fakeTagger{}
	s.Tagger = tagger

	done := make(chan CopyMoveResult, 1)
	s.CopyMove([]string{"/src/a.txt"}, "starred://", ActionCopy, nil, nil, func(r CopyMoveResult) { done <- r })
	r := <-done

	if !r.Success || r.Err != nil {
		t.Fatalf("expected success, got %+v", r)
	}
	if len(tagger.starred) != 1 || tagger.starred[0] != "/src/a.txt" {
		t.Errorf("expected /src/a.txt starred, got %v", tagger.starred)
	}
}

func TestCopyMoveNoTaggerWired(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.Cancel})

	done := make(chan CopyMoveResult, 1)
	s.CopyMove([]string{"/src/a.txt"}, "starred://", ActionCopy, nil, nil, func(r CopyMoveResult) { done <- r })
	r := <-done

	if r.Success || r.Err == nil {
		t.Fatalf("expected a failure result with no tagger wired, got %+v", r)
	}
}

func TestCopyMoveOrdinaryDestinationDispatchesMove(t *testing.T) {
	s := newTestService(dialog.Reply{Response: dialog.Cancel})
	_ = afero.WriteFile(s.Fs, "/src/a.txt", []byte("hi"), 0o644)
	_ = s.Fs.MkdirAll("/dst", 0o755)

	done := make(chan CopyMoveResult, 1)
	s.CopyMove([]string{"/src/a.txt"}, "/dst", ActionMove, nil, nil, func(r CopyMoveResult) { done <- r })
	r := <-done

	if !r.Success {
		t.Fatalf("expected success, got %+v", r)
	}
	if exists, _ := afero.Exists(s.Fs, "/src/a.txt"); exists {
		t.Error("move must remove the source")
	}
}

type fakeTagger struct {
	starred []string
}

func (f *fakeTagger) Star(path string) error {
	f.starred = append(f.starred, path)
	return nil
}

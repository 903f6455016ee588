package undo

import (
	"testing"

	"github.com/spf13/afero"
)

type fakeTrasher struct {
	trashed  map[string]string
	restored map[string]string
}

func newFakeTrasher() *fakeTrasher {
	return &fakeTrasher{trashed: map[string]string{}, restored: map[string]string{}}
}

func (f *fakeTrasher) Trash(path string) (string, error) {
	trashedPath := "/trash/" + path
	f.trashed[path] = trashedPath
	return trashedPath, nil
}

func (f *fakeTrasher) RestoreFromTrash(trashedPath, originalPath string) error {
	f.restored[trashedPath] = originalPath
	return nil
}

func TestCommitEmptyOpDoesNotPush(t *testing.T) {
	m := NewManager()
	op := m.NewOp(OpCopy)
	op.Commit()
	if m.CanUndo() {
		t.Fatal("expected an empty op not to be pushed onto the undo stack")
	}
}

func TestDiscardDropsOp(t *testing.T) {
	m := NewManager()
	op := m.NewOp(OpMove)
	op.AddOriginTargetPair("/a", "/b")
	op.Discard()
	op.Commit()
	if m.CanUndo() {
		t.Fatal("expected a discarded op to stay off the undo stack even if Commit runs afterward")
	}
}

func TestUndoMoveRenamesBack(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/b", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	op := m.NewOp(OpMove)
	op.AddOriginTargetPair("/a", "/b")
	op.Commit()

	if !m.CanUndo() {
		t.Fatal("expected the committed move to be on the undo stack")
	}

	if _, err := m.Undo(fs, nil); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if ok, _ := afero.Exists(fs, "/a"); !ok {
		t.Error("expected /a to exist after undoing the move")
	}
	if ok, _ := afero.Exists(fs, "/b"); ok {
		t.Error("expected /b to be gone after undoing the move")
	}
	if !m.CanRedo() {
		t.Error("expected the undone move to land on the redo stack")
	}
}

func TestRedoMoveReappliesRename(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/b", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	op := m.NewOp(OpMove)
	op.AddOriginTargetPair("/a", "/b")
	op.Commit()

	if _, err := m.Undo(fs, nil); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if _, err := m.Redo(fs, nil); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if ok, _ := afero.Exists(fs, "/b"); !ok {
		t.Error("expected /b to exist again after redo")
	}
	if m.CanRedo() {
		t.Error("expected the redo stack to drain after redoing its only entry")
	}
	if !m.CanUndo() {
		t.Error("expected the redone move to land back on the undo stack")
	}
}

func TestUndoCopyRemovesDestination(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/dest/file", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	op := m.NewOp(OpCopy)
	op.AddOriginTargetPair("/src/file", "/dest/file")
	op.Commit()

	if _, err := m.Undo(fs, nil); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if ok, _ := afero.Exists(fs, "/dest/file"); ok {
		t.Error("expected the copy's destination to be removed on undo")
	}
}

func TestUndoTrashRestores(t *testing.T) {
	fs := afero.NewMemMapFs()
	trasher := newFakeTrasher()

	m := NewManager()
	op := m.NewOp(OpTrash)
	op.AddOriginTargetPair("/home/doc.txt", "/trash/home/doc.txt")
	op.Commit()

	if _, err := m.Undo(fs, trasher); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := trasher.restored["/trash/home/doc.txt"]; got != "/home/doc.txt" {
		t.Errorf("expected restore to /home/doc.txt, got %q", got)
	}
}

func TestUndoTrashWithoutCapabilityErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := NewManager()
	op := m.NewOp(OpTrash)
	op.AddOriginTargetPair("/home/doc.txt", "/trash/home/doc.txt")
	op.Commit()

	if _, err := m.Undo(fs, nil); err == nil {
		t.Fatal("expected an error undoing a trash op with no Trasher wired")
	}
	if !m.CanUndo() {
		t.Error("expected the failed undo to put the op back on the stack")
	}
}

func TestUndoRecPermissionsRestoresMode(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/f", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fs.Chmod("/f", 0o600); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	op := m.NewOp(OpRecPermissions)
	op.AddPermissionsChange("/f", 0o644, 0o600)
	op.Commit()

	if _, err := m.Undo(fs, nil); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	info, err := fs.Stat("/f")
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("expected mode restored to 0o644, got %o", info.Mode().Perm())
	}
}

func TestIsOperatingDuringReplay(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/b", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	op := m.NewOp(OpMove)
	op.AddOriginTargetPair("/a", "/b")
	op.Commit()

	// A second op committed while a replay is "in flight" must not grow
	// the stack it's being played from.
	m.mu.Lock()
	m.operating = true
	m.mu.Unlock()

	replay := m.NewOp(OpCopy)
	replay.AddOriginTargetPair("/x", "/y")
	replay.Commit()

	m.mu.Lock()
	m.operating = false
	m.mu.Unlock()

	if len(m.undoStack) != 1 {
		t.Fatalf("expected operating=true to suppress the push, stack has %d entries", len(m.undoStack))
	}
}

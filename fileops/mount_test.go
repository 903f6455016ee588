package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nekomimist/fileopsd/internal/dialog"
)

type fakeMount struct {
	trashRoot string
}

func (m *fakeMount) TrashRoots() []string { return []string{m.trashRoot} }

type fakeEjector struct {
	ejectErr error
	ejected  bool
}

func (f *fakeEjector) Eject(mount Mount, mountOperation interface{}) error {
	f.ejected = true
	return f.ejectErr
}

func (f *fakeEjector) Unmount(mount Mount, mountOperation interface{}) error { return nil }

// TestUnmountMountFullEmptiesTrashEvenWhenEjectLaterFails exercises §9's
// open question: confirming Empty Trash runs it to completion before the
// eject is even attempted, and a subsequent eject failure never undoes it.
func TestUnmountMountFullEmptiesTrashEvenWhenEjectLaterFails(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "trash")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newTestService(dialog.Reply{Response: dialog.EmptyTrash})
	ejector := &fakeEjector{ejectErr: errors.New("device busy")}
	s.Ejector = ejector
	mount := &fakeMount{trashRoot: root}

	done := make(chan UnmountResult, 1)
	s.UnmountMountFull(nil, mount, nil, true, true, func(r UnmountResult) { done <- r })

	select {
	case r := <-done:
		if r.Success {
			t.Fatalf("expected the eject failure to surface, got %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("unmount_mount_full did not call on_done in time")
	}

	if !ejector.ejected {
		t.Error("expected Eject to have been attempted")
	}
	entries, err := os.ReadDir(root)
	if err != nil || len(entries) != 0 {
		t.Errorf("expected trash root emptied despite the later eject failure, got %v err=%v", entries, err)
	}
}

func TestUnmountMountFullCancelSkipsEject(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "trash")
	_ = os.MkdirAll(root, 0o755)
	_ = os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644)

	s := newTestService(dialog.Reply{Response: dialog.Cancel})
	ejector := &fakeEjector{}
	s.Ejector = ejector
	mount := &fakeMount{trashRoot: root}

	done := make(chan UnmountResult, 1)
	s.UnmountMountFull(nil, mount, nil, true, true, func(r UnmountResult) { done <- r })

	select {
	case r := <-done:
		if r.Success {
			t.Fatalf("expected cancellation to surface as failure, got %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("unmount_mount_full did not call on_done in time")
	}

	if ejector.ejected {
		t.Error("cancelling the empty-trash prompt must skip eject entirely")
	}
	entries, err := os.ReadDir(root)
	if err != nil || len(entries) != 1 {
		t.Errorf("expected trash root untouched after cancel, got %v err=%v", entries, err)
	}
}

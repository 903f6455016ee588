package trash

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nekomimist/fileopsd/internal/apperrors"
)

// XDGTrasher implements Trasher over the freedesktop.org trash
// specification's home-trash directory ($XDG_DATA_HOME/Trash). The engine
// treats trash as a typed capability (§1); this is the concrete local-disk
// backend a desktop host wires in, with no ecosystem library in the
// retrieval pack offering this spec — see DESIGN.md.
type XDGTrasher struct {
	// Root is the trash directory root (normally
	// $XDG_DATA_HOME/Trash). Root/files holds the moved items and
	// Root/info holds the matching ".trashinfo" metadata files.
	Root string
}

// NewXDGTrasher resolves the home-trash root from XDG_DATA_HOME (falling
// back to ~/.local/share), matching the spec.
func NewXDGTrasher() *XDGTrasher {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, ".local", "share")
	}
	return &XDGTrasher{Root: filepath.Join(base, "Trash")}
}

// Roots returns the trash root's files and info subdirectories, creating
// them if absent, for EmptyJob and unmount_mount_full to empty directly
// without re-deriving XDG layout knowledge.
func (t *XDGTrasher) Roots() ([]string, error) {
	filesDir := filepath.Join(t.Root, "files")
	infoDir := filepath.Join(t.Root, "info")
	if err := os.MkdirAll(filesDir, 0o700); err != nil {
		return nil, apperrors.NewFileSystemError("trash_roots", filesDir, "cannot create trash files dir", err)
	}
	if err := os.MkdirAll(infoDir, 0o700); err != nil {
		return nil, apperrors.NewFileSystemError("trash_roots", infoDir, "cannot create trash info dir", err)
	}
	return []string{filesDir, infoDir}, nil
}

// Trash moves path into the home trash and writes its .trashinfo sidecar,
// returning the trashed file's new path so a caller (internal/undo) can
// restore it later. Cross-device items report apperrors.ErrNotSupported
// (the spec's "cannot be put in the trash" fallback expects exactly this),
// matching the real spec's requirement that items only move within one
// filesystem's "$topdir/.Trash-$uid" or the home trash.
func (t *XDGTrasher) Trash(path string) (string, error) {
	filesDir := filepath.Join(t.Root, "files")
	infoDir := filepath.Join(t.Root, "info")
	if err := os.MkdirAll(filesDir, 0o700); err != nil {
		return "", apperrors.NewFileSystemError("trash", path, "cannot create trash files dir", err)
	}
	if err := os.MkdirAll(infoDir, 0o700); err != nil {
		return "", apperrors.NewFileSystemError("trash", path, "cannot create trash info dir", err)
	}

	base := filepath.Base(path)
	dest := filepath.Join(filesDir, base)
	infoPath := filepath.Join(infoDir, base+".trashinfo")
	for n := 1; ; n++ {
		if _, err := os.Lstat(dest); os.IsNotExist(err) {
			break
		}
		dest = filepath.Join(filesDir, fmt.Sprintf("%s.%d", base, n))
		infoPath = filepath.Join(infoDir, fmt.Sprintf("%s.%d.trashinfo", base, n))
	}

	if err := os.Rename(path, dest); err != nil {
		if isCrossDevice(err) {
			return "", apperrors.NewFileSystemError("trash", path, "cross-device trash not supported", apperrors.ErrNotSupported)
		}
		return "", apperrors.NewFileSystemError("trash", path, "move to trash failed", err)
	}

	info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		url.PathEscape(path), time.Now().Format("2006-01-02T15:04:05"))
	if err := os.WriteFile(infoPath, []byte(info), 0o600); err != nil {
		// The file is already trashed; a missing sidecar only affects
		// restore metadata, not the trash-or-delete contract.
		return dest, nil
	}
	return dest, nil
}

// RestoreFromTrash moves a previously trashed file back to originalPath
// and removes its .trashinfo sidecar, satisfying internal/undo.Trasher.
func (t *XDGTrasher) RestoreFromTrash(trashedPath, originalPath string) error {
	if err := os.MkdirAll(filepath.Dir(originalPath), 0o755); err != nil {
		return apperrors.NewFileSystemError("restore", originalPath, "cannot recreate parent", err)
	}
	if err := os.Rename(trashedPath, originalPath); err != nil {
		return apperrors.NewFileSystemError("restore", trashedPath, "move out of trash failed", err)
	}
	infoPath := filepath.Join(t.Root, "info", filepath.Base(trashedPath)+".trashinfo")
	_ = os.Remove(infoPath)
	return nil
}

func isCrossDevice(err error) bool {
	return strings.Contains(err.Error(), "cross-device") || strings.Contains(err.Error(), "invalid cross-device")
}

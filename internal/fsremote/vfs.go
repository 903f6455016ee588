// Package fsremote resolves a destination path to a filesystem provider and
// classifies it (local vs SMB, mounted vs direct) for the destination policy
// decisions in the copy/move engine: free-space checks, filename mangling,
// and credential lookup.
package fsremote

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Capabilities describes provider abilities relevant to the copy/move engine.
type Capabilities struct {
	FastList bool
	Watch    bool
}

// VFS is the minimal set of operations the engine needs against a resolved
// destination: directory listing, stat, and streamed reads for the
// providers (local disk, SMB share) a path can resolve to.
type VFS interface {
	ReadDir(path string) ([]os.DirEntry, error)
	Stat(path string) (os.FileInfo, error)
	Capabilities() Capabilities
	Join(elem ...string) string
	Base(p string) string
	Open(path string) (io.ReadCloser, error)
}

// LocalFS implements VFS over afero, so tests can substitute an in-memory
// filesystem without touching the real disk.
type LocalFS struct {
	Fs afero.Fs
}

// NewLocalFS wraps an afero.Fs as a VFS. A nil Fs defaults to the OS filesystem.
func NewLocalFS(fs afero.Fs) LocalFS {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return LocalFS{Fs: fs}
}

func (l LocalFS) ReadDir(path string) ([]os.DirEntry, error) {
	entries, err := afero.ReadDir(l.Fs, path)
	if err != nil {
		return nil, err
	}
	out := make([]os.DirEntry, len(entries))
	for i, fi := range entries {
		out[i] = fs.FileInfoToDirEntry(fi)
	}
	return out, nil
}

func (l LocalFS) Stat(path string) (os.FileInfo, error) { return l.Fs.Stat(path) }
func (LocalFS) Capabilities() Capabilities              { return Capabilities{FastList: true, Watch: true} }
func (LocalFS) Join(elem ...string) string              { return filepath.Join(elem...) }
func (LocalFS) Base(p string) string                    { return filepath.Base(p) }
func (l LocalFS) Open(path string) (io.ReadCloser, error) {
	return l.Fs.Open(path)
}

package fileops

import (
	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/dialog"
)

// newTestService builds a Service over an in-memory filesystem that
// answers every dialog with reply, for hermetic async-entry-point tests.
func newTestService(reply dialog.Reply) *Service {
	s := NewService(afero.NewMemMapFs())
	s.Dialogs = dialog.NewService(dialog.AutoPresenter{Reply: reply})
	return s
}

// symlinkFs wraps afero.MemMapFs with the copymove package's unexported
// symlinker capability (SymlinkIfPossible), matching afero's own
// OsFs-only Symlinker contract so link_async has something to exercise
// without touching the real filesystem.
type symlinkFs struct {
	afero.Fs
	links map[string]string
}

func newSymlinkFs() *symlinkFs {
	return &symlinkFs{Fs: afero.NewMemMapFs(), links: make(map[string]string)}
}

func (s *symlinkFs) SymlinkIfPossible(oldname, newname string) error {
	s.links[newname] = oldname
	return afero.WriteFile(s.Fs, newname, []byte("symlink:"+oldname), 0o777)
}

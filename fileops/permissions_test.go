package fileops

import (
	"os"
	"testing"

	"github.com/spf13/afero"
)

func TestSetPermissionsRecursiveSync(t *testing.T) {
	s := NewService(afero.NewMemMapFs())
	_ = s.Fs.MkdirAll("/d/sub", 0o755)
	_ = afero.WriteFile(s.Fs, "/d/a.txt", []byte("x"), 0o644)
	_ = afero.WriteFile(s.Fs, "/d/sub/b.txt", []byte("y"), 0o644)

	r := s.SetPermissionsRecursiveSync("/d", 0o600, 0o777, 0o700, 0o777)
	if !r.Success || r.Err != nil {
		t.Fatalf("expected success, got %+v", r)
	}
	if r.NumApplied == 0 {
		t.Error("expected at least one permission change applied")
	}

	info, err := s.Fs.Stat("/d/a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != os.FileMode(0o600) {
		t.Errorf("expected /d/a.txt mode 0600, got %o", info.Mode().Perm())
	}
}

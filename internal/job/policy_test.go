package job

import "testing"

func TestManglePolicyFATReplacesForbiddenChars(t *testing.T) {
	mangled, changed := manglePolicyFAT(`a"b/c\d<e>f:g|h?i*j  `)
	if !changed {
		t.Error("expected mangling to report a change")
	}
	want := "a_b_c_d_e_f_g_h_i_j"
	if mangled != want {
		t.Errorf("mangled = %q, want %q", mangled, want)
	}
}

func TestManglePolicyFATNoChange(t *testing.T) {
	mangled, changed := manglePolicyFAT("clean-name.txt")
	if changed {
		t.Error("expected no change for an already-clean name")
	}
	if mangled != "clean-name.txt" {
		t.Errorf("unexpected mangled name: %q", mangled)
	}
}

func TestPolicyForFAT(t *testing.T) {
	pol := PolicyFor("vfat", 0)
	if !pol.NeedsMangling() {
		t.Error("expected FAT policy to need mangling")
	}
	limit, bounded := pol.MaxFileSize()
	if !bounded || limit != maxFATFileSize {
		t.Errorf("expected bounded max file size %d, got bounded=%v limit=%d", maxFATFileSize, bounded, limit)
	}
}

func TestPolicyForExt4(t *testing.T) {
	pol := PolicyFor("ext4", 0)
	if pol.NeedsMangling() {
		t.Error("expected ext4 policy to not need mangling")
	}
	if _, bounded := pol.MaxFileSize(); bounded {
		t.Error("expected ext4 policy to have no size bound")
	}
}

package fsremote

import "strings"

// DestinationKind is the coarse filesystem family a resolved destination
// belongs to, used by internal/job to select a DestinationFsPolicy without
// needing its own copy of the scheme/mount logic in resolver.go.
type DestinationKind int

const (
	// KindLocal is any destination that resolves to a direct local path,
	// including a mounted network share (CIFS, NFS) the kernel presents
	// as a regular mountpoint.
	KindLocal DestinationKind = iota
	// KindSMBDirect is an smb:// destination with no local mount, reached
	// through a direct SMB session (github.com/hirochachacha/go-smb2).
	KindSMBDirect
)

// Classify resolves a destination path and reports which provider family
// will service it, without performing any I/O beyond what ResolveRead
// already does (mountinfo scan for smb:// inputs).
func Classify(destPath string) (DestinationKind, Parsed, error) {
	_, parsed, err := ResolveRead(destPath)
	if err != nil {
		return KindLocal, parsed, err
	}
	if parsed.Scheme == SchemeSMB && parsed.Provider == "smb" {
		return KindSMBDirect, parsed, nil
	}
	return KindLocal, parsed, nil
}

// LooksLikeFATFamily reports whether a kernel-reported filesystem type tag
// (as read from /proc/self/mountinfo's fstype field, or a statfs f_type
// decode) belongs to the FAT/NTFS/FUSE/CIFS/exFAT family that needs
// destination filename mangling and the 4 GiB size ceiling. A direct SMB
// session with no local mount (KindSMBDirect) is treated the same way,
// since CIFS shares are always FAT-flavored for naming purposes.
func LooksLikeFATFamily(fsTypeTag string) bool {
	t := strings.ToLower(fsTypeTag)
	switch {
	case strings.Contains(t, "fat"):
		return true
	case strings.Contains(t, "ntfs"):
		return true
	case strings.Contains(t, "fuse"):
		return true
	case strings.Contains(t, "cifs"), strings.Contains(t, "smb"):
		return true
	case strings.Contains(t, "exfat"):
		return true
	}
	return false
}

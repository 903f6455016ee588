//go:build !windows

package job

import (
	"golang.org/x/sys/unix"
)

// fsTypeMagic maps the handful of statfs f_type magic numbers this engine
// cares about to the string tags query_fs_type hands back to policy
// selection and the RAM/free-space checks in verify_destination.
var fsTypeMagic = map[int64]string{
	0x4d44:     "vfat",
	0x5346544e: "ntfs", // "NTFS" ascii-ish, used by ntfs-3g fuse mounts
	0x65735546: "fuse",
	0xff534d42: "cifs",
	0x2011bab0: "exfat",
	0x9660:     "isofs",
	0x01021994: "tmpfs", // TMPFS_MAGIC
	0x858458f6: "ramfs",
}

// fsInfo is the result of a filesystem-type/free-space query. Read-only is
// not derived from statfs flags (unreliable across filesystem drivers);
// verify_destination instead probes writability directly (see verify.go).
type fsInfo struct {
	TypeTag   string
	IsRAM     bool
	FreeBytes uint64
}

// statFS queries the filesystem backing path using unix.Statfs, the
// syscall-level equivalent of the original's g_file_query_filesystem_info.
func statFS(path string) (fsInfo, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return fsInfo{}, err
	}
	tag, ok := fsTypeMagic[int64(st.Type)]
	if !ok {
		tag = "unknown"
	}
	free := st.Bavail * uint64(st.Bsize)
	isRAM := tag == "tmpfs" || tag == "ramfs"
	return fsInfo{TypeTag: tag, IsRAM: isRAM, FreeBytes: free}, nil
}

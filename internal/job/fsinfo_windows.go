//go:build windows

package job

import (
	"strings"
	"syscall"
	"unsafe"
)

var (
	kernel32                  = syscall.NewLazyDLL("kernel32.dll")
	procGetDiskFreeSpaceExW   = kernel32.NewProc("GetDiskFreeSpaceExW")
	procGetVolumeInformationW = kernel32.NewProc("GetVolumeInformationW")
)

// statFS queries volume free space and filesystem name (NTFS, FAT32,
// exFAT, ...) via the Win32 API, the Windows counterpart to unix.Statfs
// in fsinfo_unix.go.
func statFS(path string) (fsInfo, error) {
	root := volumeRoot(path)
	rootPtr, err := syscall.UTF16PtrFromString(root)
	if err != nil {
		return fsInfo{}, err
	}

	var freeAvail, total, totalFree uint64
	ret, _, callErr := procGetDiskFreeSpaceExW.Call(
		uintptr(unsafe.Pointer(rootPtr)),
		uintptr(unsafe.Pointer(&freeAvail)),
		uintptr(unsafe.Pointer(&total)),
		uintptr(unsafe.Pointer(&totalFree)),
	)
	if ret == 0 {
		return fsInfo{}, callErr
	}

	fsName := make([]uint16, 64)
	procGetVolumeInformationW.Call(
		uintptr(unsafe.Pointer(rootPtr)),
		0, 0, 0, 0, 0,
		uintptr(unsafe.Pointer(&fsName[0])),
		uintptr(len(fsName)),
	)
	tag := strings.ToLower(syscall.UTF16ToString(fsName))
	if tag == "" {
		tag = "unknown"
	}
	return fsInfo{TypeTag: tag, IsRAM: false, FreeBytes: freeAvail}, nil
}

func volumeRoot(path string) string {
	if len(path) >= 2 && path[1] == ':' {
		return path[:2] + `\`
	}
	return `C:\`
}

package job

import (
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nekomimist/fileopsd/internal/fsremote"
)

// maxFATFileSize is the original's MAXIMUM_FAT_FILE_SIZE: G_MAXUINT32,
// i.e. exactly 4 GiB - 1. Not a rounding choice — see §12.
const maxFATFileSize = 1<<32 - 1

// fatForbiddenCharacters carries forward the original's
// FAT_FORBIDDEN_CHARACTERS table verbatim.
const fatForbiddenCharacters = "\"/\\<>:|?*"

// DestinationFsPolicy abstracts the FAT/NTFS/FUSE/CIFS/exFAT-specific
// naming and size rules the original encodes as ad hoc string comparisons
// against the filesystem-type tag (§9).
type DestinationFsPolicy interface {
	ForbiddenChars() string
	MaxNameLength() int
	MaxFileSize() (limit uint64, bounded bool)
	NeedsMangling() bool
	// Mangle rewrites name for this destination filesystem and reports
	// whether it changed anything.
	Mangle(name string) (mangled string, changed bool)
}

// fatPolicy implements DestinationFsPolicy for the FAT/NTFS/FUSE/CIFS/
// exFAT family: forbidden characters replaced with "_", then trailing
// whitespace stripped, in that order (§4.1 "Filename mangling").
type fatPolicy struct{}

func (fatPolicy) ForbiddenChars() string { return fatForbiddenCharacters }
func (fatPolicy) MaxNameLength() int     { return 255 }
func (fatPolicy) MaxFileSize() (uint64, bool) { return maxFATFileSize, true }
func (fatPolicy) NeedsMangling() bool    { return true }

func (fatPolicy) Mangle(name string) (string, bool) {
	return manglePolicyFAT(name)
}

// manglePolicyFAT implements the mangler for the FAT-like family: replace
// any forbidden or control character with "_", then strip trailing
// whitespace. Returns whether the string changed.
func manglePolicyFAT(name string) (string, bool) {
	var b strings.Builder
	changed := false
	for _, r := range name {
		if strings.ContainsRune(fatForbiddenCharacters, r) || r < 0x20 {
			b.WriteRune('_')
			changed = true
			continue
		}
		b.WriteRune(r)
	}
	mangled := b.String()
	trimmed := strings.TrimRight(mangled, " \t\r\n")
	if trimmed != mangled {
		changed = true
	}
	return trimmed, changed
}

// permissivePolicy implements DestinationFsPolicy for filesystems (ext4,
// xfs, btrfs, ...) with no forbidden-character set, no mangling, and no
// file-size ceiling worth enforcing here.
type permissivePolicy struct{}

func (permissivePolicy) ForbiddenChars() string          { return "" }
func (permissivePolicy) MaxNameLength() int              { return 255 }
func (permissivePolicy) MaxFileSize() (uint64, bool)     { return 0, false }
func (permissivePolicy) NeedsMangling() bool             { return false }
func (permissivePolicy) Mangle(name string) (string, bool) { return name, false }

// PolicyFor selects a DestinationFsPolicy for a filesystem-type tag, per
// §9: FAT/NTFS/FUSE/CIFS/exFAT get fatPolicy, everything else the
// permissive default. A direct (unmounted) SMB destination always gets
// the CIFS-flavored policy, matching fsremote.LooksLikeFATFamily's
// treatment.
func PolicyFor(typeTag string, kind fsremote.DestinationKind) DestinationFsPolicy {
	if kind == fsremote.KindSMBDirect || fsremote.LooksLikeFATFamily(typeTag) {
		return fatPolicy{}
	}
	return permissivePolicy{}
}

// policyCacheSize bounds the per-destination-parent cache so a job
// touching many destination parents (e.g. a deep recursive merge) can't
// grow it unboundedly — §5 "local to the job".
const policyCacheSize = 256

// PolicyCache caches DestinationFsPolicy and fsInfo lookups per
// destination-parent directory for the lifetime of one job, per §4.1
// "Cached per-job per-destination-parent."
type PolicyCache struct {
	policies *lru.Cache[string, DestinationFsPolicy]
	infos    *lru.Cache[string, fsInfo]
}

// NewPolicyCache constructs an empty, job-local cache.
func NewPolicyCache() *PolicyCache {
	policies, _ := lru.New[string, DestinationFsPolicy](policyCacheSize)
	infos, _ := lru.New[string, fsInfo](policyCacheSize)
	return &PolicyCache{policies: policies, infos: infos}
}

// QueryFSType returns the cached fsInfo and DestinationFsPolicy for the
// parent directory of destPath, populating the cache on first use
// (query_fs_type, §4.1).
func (c *PolicyCache) QueryFSType(destPath string) (fsInfo, DestinationFsPolicy, error) {
	parent := filepath.Dir(destPath)

	if info, ok := c.infos.Get(parent); ok {
		pol, _ := c.policies.Get(parent)
		return info, pol, nil
	}

	kind, _, err := fsremote.Classify(parent)
	if err != nil {
		return fsInfo{}, nil, err
	}

	var info fsInfo
	if kind == fsremote.KindSMBDirect {
		info = fsInfo{TypeTag: "cifs"}
	} else {
		info, err = statFS(parent)
		if err != nil {
			return fsInfo{}, nil, err
		}
	}

	pol := PolicyFor(info.TypeTag, kind)
	c.infos.Add(parent, info)
	c.policies.Add(parent, pol)
	return info, pol, nil
}

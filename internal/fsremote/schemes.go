package fsremote

import "strings"

// SpecialScheme is one of the non-filesystem destination/source schemes the
// copy/move dispatcher must recognize before ever constructing a job (§4.2
// "Special sinks", §12 "Scheme-gated destination redirection"). These mirror
// the original's SCHEME_STARRED/SCHEME_TRASH/SCHEME_RECENT/SCHEME_BURN URI
// prefixes.
type SpecialScheme string

const (
	// SpecialNone means the input is an ordinary filesystem path/URI,
	// resolved the normal way via ResolveRead/Classify.
	SpecialNone SpecialScheme = ""
	// SpecialStarred redirects a copy/move destination to the tagging
	// subsystem instead of running a job at all (§9 open question: no
	// undo is recorded either way).
	SpecialStarred SpecialScheme = "starred"
	// SpecialTrash, as a destination, means "move to trash" rather than a
	// normal copy/move; as a source scheme it means the item is already
	// in the trash.
	SpecialTrash SpecialScheme = "trash"
	// SpecialRecent, as a source scheme for a delete operation, means
	// "clear from recent list" — wording-only, no real file is removed.
	SpecialRecent SpecialScheme = "recent"
	// SpecialBurn marks a disc-burning staging tree; its contents
	// auto-confirm permanent deletion without a dialog (§4.3, §12).
	SpecialBurn SpecialScheme = "burn"
)

// ClassifyScheme inspects a raw destination or source string for one of the
// special URI schemes above, without attempting to resolve it to a VFS
// provider. Ordinary local paths and smb:// URIs both report SpecialNone.
func ClassifyScheme(raw string) SpecialScheme {
	switch {
	case hasSchemePrefix(raw, "starred"):
		return SpecialStarred
	case hasSchemePrefix(raw, "trash"):
		return SpecialTrash
	case hasSchemePrefix(raw, "recent"):
		return SpecialRecent
	case hasSchemePrefix(raw, "burn"):
		return SpecialBurn
	default:
		return SpecialNone
	}
}

func hasSchemePrefix(raw, scheme string) bool {
	return strings.HasPrefix(strings.ToLower(raw), scheme+"://") || strings.HasPrefix(strings.ToLower(raw), scheme+":")
}

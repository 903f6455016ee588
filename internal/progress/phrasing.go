package progress

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// maxDisplayRunes is the truncation point for display names (§4.6: "50
// grapheme clusters"). Rune count is used as the practical approximation —
// no grapheme-cluster segmentation library is part of this repo's
// dependency stack, so counting runes (correct for the overwhelming
// majority of filenames) is the stdlib-only fallback; see DESIGN.md.
const maxDisplayRunes = 50

var bundle = newPhrasingBundle()

func newPhrasingBundle() *i18n.Bundle {
	b := i18n.NewBundle(language.English)
	b.MustAddMessages(language.English,
		&i18n.Message{ID: "copying_files", One: "Copying {{.Count}} file", Other: "Copying {{.Count}} files"},
		&i18n.Message{ID: "moving_files", One: "Moving {{.Count}} file", Other: "Moving {{.Count}} files"},
		&i18n.Message{ID: "linking_files", One: "Creating {{.Count}} link", Other: "Creating {{.Count}} links"},
		&i18n.Message{ID: "trashing_files", One: "Moving {{.Count}} file to trash", Other: "Moving {{.Count}} files to trash"},
		&i18n.Message{ID: "deleting_files", One: "Deleting {{.Count}} file", Other: "Deleting {{.Count}} files"},
		&i18n.Message{ID: "clearing_recent", One: "Clearing {{.Count}} item from recent", Other: "Clearing {{.Count}} items from recent"},
		&i18n.Message{ID: "extracting_files", One: "Extracting {{.Count}} file", Other: "Extracting {{.Count}} files"},
		&i18n.Message{ID: "compressing_files", One: "Compressing {{.Count}} file", Other: "Compressing {{.Count}} files"},
	)
	return b
}

// PhraseKind selects which status template family to render.
type PhraseKind string

const (
	PhraseCopying     PhraseKind = "copying_files"
	PhraseMoving      PhraseKind = "moving_files"
	PhraseLinking     PhraseKind = "linking_files"
	PhraseTrashing    PhraseKind = "trashing_files"
	PhraseDeleting    PhraseKind = "deleting_files"
	PhraseClearing    PhraseKind = "clearing_recent"
	PhraseExtracting  PhraseKind = "extracting_files"
	PhraseCompressing PhraseKind = "compressing_files"
)

// localizer is shared; this engine only ships English templates (the
// original's localization layer is out of scope — §1), but routing every
// plural decision through go-i18n's PluralCount selection is what keeps
// this extensible to further locales without touching call sites.
var localizer = i18n.NewLocalizer(bundle, "en")

// StatusLong renders the long status line for a phrase kind, plural-aware.
func StatusLong(kind PhraseKind, count int) string {
	s, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    string(kind),
		TemplateData: map[string]interface{}{"Count": count},
		PluralCount:  count,
	})
	if err != nil {
		return fmt.Sprintf("%s (%d)", kind, count)
	}
	return s
}

// StatusShort renders a parenthesis-free noun phrase for narrow
// notifications, e.g. "Copying files" vs "Copying file".
func StatusShort(kind PhraseKind, count int) string {
	switch kind {
	case PhraseCopying:
		if count == 1 {
			return "Copying file"
		}
		return "Copying files"
	case PhraseMoving:
		if count == 1 {
			return "Moving file"
		}
		return "Moving files"
	case PhraseLinking:
		if count == 1 {
			return "Creating link"
		}
		return "Creating links"
	case PhraseTrashing:
		return "Moving to trash"
	case PhraseDeleting:
		if count == 1 {
			return "Deleting file"
		}
		return "Deleting files"
	case PhraseClearing:
		return "Clearing recent"
	case PhraseExtracting:
		if count == 1 {
			return "Extracting file"
		}
		return "Extracting files"
	case PhraseCompressing:
		return "Compressing"
	default:
		return string(kind)
	}
}

// FormattedTime implements get_formatted_time(secs): "N seconds" below a
// minute, "N minutes" below an hour, "N hours" at or above 4 hours, and
// "N hours, M minutes" in between.
func FormattedTime(secs int64) string {
	switch {
	case secs < 60:
		return fmt.Sprintf("%d seconds", secs)
	case secs < 3600:
		return fmt.Sprintf("%d minutes", secs/60)
	case secs >= 14400:
		return fmt.Sprintf("%d hours", secs/3600)
	default:
		hours := secs / 3600
		minutes := (secs % 3600) / 60
		return fmt.Sprintf("%d hours, %d minutes", hours, minutes)
	}
}

// SecondsCountFormatTimeUnits returns the numeric value a translator
// would use to select singular/plural for FormattedTime's output — the
// minutes/hours count, not the raw seconds.
func SecondsCountFormatTimeUnits(secs int64) int64 {
	switch {
	case secs < 60:
		return secs
	case secs < 3600:
		return secs / 60
	default:
		return secs / 3600
	}
}

// TruncateDisplayName middle-truncates a display name with an ellipsis at
// maxDisplayRunes runes, and percent-escapes names that fail UTF-8
// validation (per §4.6).
func TruncateDisplayName(name string) string {
	if !utf8.ValidString(name) {
		return url.PathEscape(name)
	}
	runes := []rune(name)
	if len(runes) <= maxDisplayRunes {
		return name
	}
	keep := maxDisplayRunes - 1 // reserve one slot for the ellipsis rune
	head := keep/2 + keep%2
	tail := keep / 2
	var b strings.Builder
	b.WriteString(string(runes[:head]))
	b.WriteRune('…')
	b.WriteString(string(runes[len(runes)-tail:]))
	return b.String()
}

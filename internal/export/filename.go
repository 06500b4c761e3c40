package export

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	filenamePrefix  = "extraction_"
	maxTitleRunes   = 50
	untitled        = "untitled"
	timestampLayout = "2006-01-02_15-04-05"
)

// Filename derives the artifact name from a document title and a moment:
// extraction_<title>_<YYYY-MM-DD_HH-MM-SS>.txt, with the timestamp in UTC.
func Filename(title string, at time.Time) string {
	return filenamePrefix + SanitizeTitle(title) + "_" + at.UTC().Format(timestampLayout) + ".txt"
}

// SanitizeTitle folds accents, replaces every character outside
// [A-Za-z0-9_.-] with an underscore and keeps at most 50 characters.
// An empty result becomes "untitled".
func SanitizeTitle(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}
	var b strings.Builder
	n := 0
	for _, r := range folded {
		if n == maxTitleRunes {
			break
		}
		if isFilenameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		n++
	}
	if b.Len() == 0 {
		return untitled
	}
	return b.String()
}

func isFilenameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.', r == '-':
		return true
	}
	return false
}

// withExt swaps the extension of a generated name.
func withExt(name, ext string) string {
	if ext == "" {
		return name
	}
	return strings.TrimSuffix(name, ".txt") + ext
}

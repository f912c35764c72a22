package match

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// minQueryLength is the shortest stripped album or track title that
	// replaces the full title in a search.
	minQueryLength = 4
	// artistSegmentMinLength is exceeded (strictly) by any artist segment
	// that replaces the full artist string in a search.
	artistSegmentMinLength = 4
)

var (
	bracketedSuffix = regexp.MustCompile(` [(\[].*[)\]]`)
	dashSuffix      = regexp.MustCompile(` - .*`)
	emDashSuffix    = regexp.MustCompile(` — .*`)
	joinedWords     = regexp.MustCompile(`([a-z])\+([a-z])`)
)

// Query converts raw input text for field f into a catalog search term.
func Query(f Field, raw string) string {
	q := SplitFeaturing(strings.ToLower(raw)).Root

	switch f {
	case FieldAlbum, FieldTrack:
		if stripped := withoutAnnotations(q); utf8.RuneCountInString(stripped) >= minQueryLength {
			q = stripped
		}
	case FieldArtist:
		if seg := shortestArtistSegment(q); utf8.RuneCountInString(seg) > artistSegmentMinLength {
			q = seg
		}
	}

	q = joinedWords.ReplaceAllString(q, "$1 $2")
	return strings.TrimSpace(strings.ReplaceAll(q, "+", ""))
}

// withoutAnnotations drops bracketed qualifiers and dash-introduced suffixes
// such as " - Remastered 2011".
func withoutAnnotations(s string) string {
	s = bracketedSuffix.ReplaceAllString(s, "")
	s = dashSuffix.ReplaceAllString(s, "")
	s = emDashSuffix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// shortestArtistSegment returns the shortest leading segment produced by
// splitting s on any single artist separator.
func shortestArtistSegment(s string) string {
	shortest := s
	for _, sep := range artistSeparators {
		first, _, _ := strings.Cut(s, sep)
		first = strings.TrimSpace(first)
		if first != "" && utf8.RuneCountInString(first) < utf8.RuneCountInString(shortest) {
			shortest = first
		}
	}
	return shortest
}

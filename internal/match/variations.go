package match

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// enumerator produces raw (not yet lowercased or deduplicated) variations.
type enumerator func(string) []string

var enumerators = map[Field]enumerator{
	FieldArtist: artistVariations,
	FieldAlbum:  albumVariations,
	FieldTrack:  trackVariations,
}

// Variations returns the deduplicated, lowercased textual variants of text
// that are considered equivalent for field f. The lowercased original is
// always the first element.
func Variations(f Field, text string) []string {
	enumerate, ok := enumerators[f]
	if !ok {
		return []string{strings.ToLower(text)}
	}

	raw := enumerate(text)
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		v = strings.ToLower(v)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func artistVariations(s string) []string {
	variations := []string{s, Numberify(s), NumberTextify(s), SplitFeaturing(s).Root}
	return append(variations, SplitArtists(s)...)
}

func trackVariations(s string) []string {
	f := SplitFeaturing(s)
	return []string{s, Numberify(s), NumberTextify(s), f.Root, f.Root + f.Remainder}
}

const (
	// A colon-delimited album segment is kept when it is longer than this
	// many characters...
	albumSegmentMinLength = 4
	// ...or longer than this share of the full title.
	albumSegmentMinShare = 0.33
	// Dropping a bracketed run must keep at least this share of the title.
	albumBracketKeepShare = 0.3
)

var firstBracketRun = regexp.MustCompile(`\[.*?\]|\(.*?\)`)

func albumVariations(s string) []string {
	variations := trackVariations(s)
	total := utf8.RuneCountInString(s)

	for _, part := range strings.Split(s, ":") {
		n := utf8.RuneCountInString(part)
		if n > albumSegmentMinLength || float64(n) > albumSegmentMinShare*float64(total) {
			variations = append(variations, strings.TrimSpace(part))
		}
	}

	if loc := firstBracketRun.FindStringIndex(s); loc != nil {
		dropped := strings.TrimSpace(s[:loc[0]] + s[loc[1]:])
		if float64(utf8.RuneCountInString(dropped)) >= albumBracketKeepShare*float64(total) {
			variations = append(variations, dropped)
		}
	}

	return variations
}

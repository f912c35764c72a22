package match

import (
	"regexp"
	"strings"
)

var (
	// "Root (feat. Names)Remainder" with a non-greedy bracket body.
	bracketedFeaturing = regexp.MustCompile(`(?i)^(.*) [(\[](?:ft|feat|featuring)\.? (.*?)[)\]](.*)$`)
	// "Root feat. Names..." consuming to the end of the string.
	trailingFeaturing = regexp.MustCompile(`(?i)^(.*?) (?:ft|feat|featuring)\.? (.*)$`)
	// Splits a trailing annotation back off greedily consumed featured names.
	featuringRemainder = regexp.MustCompile(`^(.*?)( [-—(\[].*)$`)
)

// Featuring is the result of splitting a "featuring" clause off a name.
type Featuring struct {
	// Root is the name with the featuring clause removed. It equals the
	// original string when no clause was found.
	Root string
	// Names holds the featured performers as written.
	Names string
	// Remainder is any text that followed the clause, such as " - Radio Edit".
	Remainder string
	// Found reports whether a featuring clause was recognized.
	Found bool
}

// SplitFeaturing separates a "ft"/"feat"/"featuring" clause from s.
func SplitFeaturing(s string) Featuring {
	if m := bracketedFeaturing.FindStringSubmatch(s); m != nil {
		return Featuring{Root: m[1], Names: m[2], Remainder: m[3], Found: true}
	}

	if m := trailingFeaturing.FindStringSubmatch(s); m != nil {
		f := Featuring{Root: m[1], Names: m[2], Found: true}
		if r := featuringRemainder.FindStringSubmatch(m[2]); r != nil {
			f.Names = r[1]
			f.Remainder = r[2]
		}
		return f
	}

	return Featuring{Root: s}
}

// artistSeparators join multiple performers in one artist string. Order
// matters: splitting is applied separator by separator.
var artistSeparators = []string{" and ", " with ", " x ", " + ", " & ", ", "}

// SplitArtists breaks a multi-artist string into its individual performers,
// lowercased and deduplicated. Featured performers are included.
func SplitArtists(s string) []string {
	f := SplitFeaturing(s)
	var parts []string
	for _, p := range []string{f.Root, f.Names, f.Remainder} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	for _, sep := range artistSeparators {
		next := make([]string, 0, len(parts))
		for _, p := range parts {
			next = append(next, strings.Split(strings.ToLower(p), sep)...)
		}
		parts = next
	}

	return uniqueNonEmpty(parts)
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

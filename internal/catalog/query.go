package catalog

import (
	"strings"
	"unicode"
)

// FreeText is the term field that is sent without a field filter.
const FreeText = "q"

// Term is one fielded search constraint, such as artist:"daft punk".
type Term struct {
	Field string
	Value string
}

// EncodeQuery renders terms as a catalog search query. Every value is split
// on spaces and each word becomes its own filter; words with no letter or
// digit are dropped, quotes are removed and words containing a wildcard are
// quoted. Plus signs are removed from the result.
func EncodeQuery(terms []Term) string {
	var words []string
	for _, t := range terms {
		for _, tok := range strings.Split(t.Value, " ") {
			if !strings.ContainsFunc(tok, isWordRune) {
				continue
			}
			tok = strings.NewReplacer(`"`, "", "'", "").Replace(tok)
			if strings.Contains(tok, "*") {
				tok = `"` + tok + `"`
			}
			if t.Field != FreeText && t.Field != "" {
				tok = t.Field + ":" + tok
			}
			words = append(words, tok)
		}
	}
	return strings.ReplaceAll(strings.Join(words, " "), "+", "")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

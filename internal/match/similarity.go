package match

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"github.com/xrash/smetrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Jaro-Winkler parameters: the prefix bonus applies above boostThreshold and
// counts at most prefixSize leading characters.
const (
	boostThreshold = 0.7
	prefixSize     = 4
)

// DefaultIgnoredTerms are stripped before comparing names.
var DefaultIgnoredTerms = []string{"remastered", "deluxe edition"}

// Scorer computes penalized string similarity between input variations
// and candidate names.
type Scorer struct {
	ignoredTerms []string
	penalties    PenaltyChain
}

// NewScorer creates a Scorer that strips ignoredTerms before comparison and
// subtracts penalties from every raw similarity.
func NewScorer(ignoredTerms []string, penalties PenaltyChain) *Scorer {
	lowered := make([]string, 0, len(ignoredTerms))
	for _, t := range ignoredTerms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}
	return &Scorer{ignoredTerms: lowered, penalties: penalties}
}

// BestScore returns the highest penalized similarity over every pairing of
// an input variation with a candidate. It returns 0 when either side is
// empty.
func (s *Scorer) BestScore(inputs []string, candidates []Subject) float64 {
	best := 0.0
	for _, in := range inputs {
		for _, c := range candidates {
			if score := s.Score(in, c); score > best {
				best = score
			}
		}
	}
	return best
}

// Score returns the similarity of input and candidate minus the penalty
// chain, floored at zero.
func (s *Scorer) Score(input string, candidate Subject) float64 {
	sim := s.Similarity(input, candidate.Name)
	return max(0, sim-s.penalties.Total(input, candidate))
}

// Similarity returns the Jaro-Winkler similarity of a and b after
// preprocessing, in [0,1].
func (s *Scorer) Similarity(a, b string) float64 {
	pa, pb := s.preprocess(a), s.preprocess(b)
	if pa == pb {
		return 1
	}
	if pa == "" || pb == "" {
		return 0
	}
	return smetrics.JaroWinkler(pa, pb, boostThreshold, prefixSize)
}

// preprocess transliterates to base Latin, lowercases, drops ignored terms
// and strips spacing and punctuation.
func (s *Scorer) preprocess(text string) string {
	p := strings.ToLower(transliterate(strings.ToLower(text)))
	for _, term := range s.ignoredTerms {
		p = strings.ReplaceAll(p, term, "")
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '.', '…', ',', '-', '—', '(', ')', '[', ']':
			return -1
		}
		return r
	}, p)
}

// transliterate folds compatibility characters and diacritics, then
// romanizes whatever is left outside ASCII, so "Сплин" becomes "Splin".
func transliterate(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return unidecode.Unidecode(out)
}

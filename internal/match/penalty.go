package match

import (
	"strings"
	"unicode/utf8"
)

// Subject is a catalog name being compared against input text, together
// with the popularity (0-100) of the entity it names when the catalog
// reported one.
type Subject struct {
	Name       string
	Popularity *int
}

// Penalty returns a non-negative adjustment to subtract from the raw
// similarity between input and candidate. Penalties see the text before
// any preprocessing.
type Penalty func(input string, candidate Subject) float64

// PenaltyChain is an ordered list of independent penalties.
type PenaltyChain []Penalty

// Total sums every penalty in the chain.
func (c PenaltyChain) Total(input string, candidate Subject) float64 {
	var sum float64
	for _, p := range c {
		sum += p(input, candidate)
	}
	return sum
}

// Penalty weights.
const (
	TributeWeight = 0.3
	RemixWeight   = 0.2
	LiveWeight    = 0.2

	lengthScale      = 50
	popularityDivide = 10000
)

// DefaultRemixTerms are the candidate-name terms that mark a remix.
var DefaultRemixTerms = []string{"remix"}

var tributeTerms = []string{"tribute", "karaoke", "made famous"}

// DefaultPenalties returns the standard chain: tribute, remix, live, length
// and popularity, in that order.
func DefaultPenalties(remixTerms []string) PenaltyChain {
	if len(remixTerms) == 0 {
		remixTerms = DefaultRemixTerms
	}
	return PenaltyChain{
		TributePenalty,
		RemixPenalty(remixTerms),
		LivePenalty,
		LengthPenalty,
		PopularityPenalty,
	}
}

// TributePenalty penalizes tribute acts, karaoke versions and "made famous
// by" recordings unless the input asks for one.
func TributePenalty(input string, candidate Subject) float64 {
	if introduces(input, candidate.Name, tributeTerms...) {
		return TributeWeight
	}
	return 0
}

// RemixPenalty penalizes candidates carrying any of terms that the input
// lacks.
func RemixPenalty(terms []string) Penalty {
	lowered := make([]string, len(terms))
	for i, t := range terms {
		lowered[i] = strings.ToLower(t)
	}
	return func(input string, candidate Subject) float64 {
		if introduces(input, candidate.Name, lowered...) {
			return RemixWeight
		}
		return 0
	}
}

// LivePenalty penalizes live recordings unless the input is one.
func LivePenalty(input string, candidate Subject) float64 {
	if introduces(input, candidate.Name, "live") {
		return LiveWeight
	}
	return 0
}

// LengthPenalty slightly prefers longer, more specific candidate names. An
// empty name takes the full penalty.
func LengthPenalty(_ string, candidate Subject) float64 {
	n := utf8.RuneCountInString(candidate.Name)
	if n == 0 {
		return 1
	}
	return 1 / float64(n*lengthScale)
}

// PopularityPenalty slightly prefers popular candidates. Candidates with no
// reported popularity are not penalized.
func PopularityPenalty(_ string, candidate Subject) float64 {
	if candidate.Popularity == nil {
		return 0
	}
	p := min(max(*candidate.Popularity, 0), 100)
	return float64(100-p) / popularityDivide
}

// introduces reports whether candidate contains one of terms that input
// does not, case-insensitively.
func introduces(input, candidate string, terms ...string) bool {
	input = strings.ToLower(input)
	candidate = strings.ToLower(candidate)
	for _, t := range terms {
		if strings.Contains(candidate, t) && !strings.Contains(input, t) {
			return true
		}
	}
	return false
}

package match

import (
	"maps"
	"slices"
)

// Filter applies score thresholds to scored matches and ranks the survivors.
type Filter struct {
	thresholds Thresholds
}

// NewFilter creates a Filter.
func NewFilter(thresholds Thresholds) *Filter {
	return &Filter{thresholds: thresholds}
}

// Apply filters and ranks matches:
//
//  1. matches whose composite does not exceed the composite threshold are dropped;
//  2. each field of thresholdFields scoring below its threshold (missing
//     counts as 0) is removed from the candidate and the score map, while the
//     composite is left as computed;
//  3. when required is non-empty, matches that lost or never had it are dropped;
//  4. when thresholdFields is non-empty, matches with none of them left are dropped;
//  5. survivors are sorted by composite, descending, keeping input order on ties.
//
// The input slice is not modified.
func (f *Filter) Apply(matches []Match, thresholdFields []Field, required Field) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if !(m.Score.Composite > f.thresholds.Composite) {
			continue
		}

		m.Score.Fields = maps.Clone(m.Score.Fields)
		if m.Score.Fields == nil {
			m.Score.Fields = map[Field]float64{}
		}
		for _, field := range thresholdFields {
			if m.Score.Fields[field] < f.thresholds.For(field) {
				delete(m.Score.Fields, field)
				m.Candidate = m.Candidate.without(field)
			}
		}

		if required != "" {
			if _, ok := m.Score.Fields[required]; !ok {
				continue
			}
		}

		if len(thresholdFields) > 0 && !anyScored(m.Score, thresholdFields) {
			continue
		}

		out = append(out, m)
	}

	slices.SortStableFunc(out, func(a, b Match) int {
		switch {
		case a.Score.Composite > b.Score.Composite:
			return -1
		case a.Score.Composite < b.Score.Composite:
			return 1
		}
		return 0
	})
	return out
}

func anyScored(s Score, fields []Field) bool {
	for _, f := range fields {
		if _, ok := s.Fields[f]; ok {
			return true
		}
	}
	return false
}

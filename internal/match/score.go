package match

// Weights are the per-field weights of the composite score.
type Weights struct {
	Artist float64 `json:"artist" yaml:"artist"`
	Album  float64 `json:"album" yaml:"album"`
	Track  float64 `json:"track" yaml:"track"`
}

// For returns the weight of field f.
func (w Weights) For(f Field) float64 {
	switch f {
	case FieldArtist:
		return w.Artist
	case FieldAlbum:
		return w.Album
	case FieldTrack:
		return w.Track
	}
	return 0
}

// Thresholds are the minimum acceptable per-field scores and the composite
// score a match must exceed.
type Thresholds struct {
	Artist    float64 `json:"artist" yaml:"artist"`
	Album     float64 `json:"album" yaml:"album"`
	Track     float64 `json:"track" yaml:"track"`
	Composite float64 `json:"composite" yaml:"composite"`
}

// For returns the per-field threshold of field f.
func (t Thresholds) For(f Field) float64 {
	switch f {
	case FieldArtist:
		return t.Artist
	case FieldAlbum:
		return t.Album
	case FieldTrack:
		return t.Track
	}
	return 0
}

// Aggregator scores candidates field by field and combines the field scores
// into a weighted composite.
type Aggregator struct {
	scorer  *Scorer
	weights Weights
}

// NewAggregator creates an Aggregator.
func NewAggregator(scorer *Scorer, weights Weights) *Aggregator {
	return &Aggregator{scorer: scorer, weights: weights}
}

// Score attaches a Score to every candidate. Only fields listed in fields
// that are present in the input and carried by the candidate are scored.
// The returned matches keep the order of candidates.
func (a *Aggregator) Score(input InputRecord, candidates []Candidate, fields []Field) []Match {
	inputs := make(map[Field][]string, len(fields))
	for _, f := range fields {
		if v, ok := input.Value(f); ok {
			inputs[f] = Variations(f, v)
		}
	}

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		scores := make(map[Field]float64, len(inputs))
		for f, variants := range inputs {
			subjects := candidateSubjects(c, f)
			if len(subjects) == 0 {
				continue
			}
			scores[f] = a.scorer.BestScore(variants, subjects)
		}
		matches = append(matches, Match{
			Candidate: c,
			Score:     Score{Fields: scores, Composite: a.composite(scores)},
		})
	}
	return matches
}

// composite is the weighted mean of the scored fields. It is 0 when nothing
// was scored.
func (a *Aggregator) composite(scores map[Field]float64) float64 {
	var sum, weight float64
	for _, f := range allFields {
		s, ok := scores[f]
		if !ok {
			continue
		}
		w := a.weights.For(f)
		sum += w * s
		weight += w
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}

// candidateSubjects lists the names a candidate offers for field f. Artist
// names are compared as-is; album and track names are expanded into their
// variations.
func candidateSubjects(c Candidate, f Field) []Subject {
	switch f {
	case FieldArtist:
		subjects := make([]Subject, 0, len(c.Artists))
		for _, ar := range c.Artists {
			subjects = append(subjects, Subject{Name: ar.Name, Popularity: ar.Popularity})
		}
		return subjects
	case FieldAlbum:
		if c.Album == nil {
			return nil
		}
		return expandSubjects(f, c.Album.Name, c.Album.Popularity)
	case FieldTrack:
		if c.Track == nil {
			return nil
		}
		return expandSubjects(f, c.Track.Name, c.Track.Popularity)
	}
	return nil
}

func expandSubjects(f Field, name string, popularity *int) []Subject {
	variants := Variations(f, name)
	subjects := make([]Subject, len(variants))
	for i, v := range variants {
		subjects[i] = Subject{Name: v, Popularity: popularity}
	}
	return subjects
}

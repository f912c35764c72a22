package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sydlexius/songmatch/internal/catalog"
)

var (
	// ErrEmptyInput is returned when an input record has no artist, album or
	// track value.
	ErrEmptyInput = errors.New("input has no artist, album or track")
	// ErrNoMatch is returned when every cascade stage ends without a
	// surviving candidate.
	ErrNoMatch = errors.New("no match")
)

// Options tunes resolution.
type Options struct {
	Thresholds   Thresholds
	Weights      Weights
	IgnoredTerms []string
	RemixTerms   []string
	Market       string
	SearchLimit  int
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		Thresholds:   Thresholds{Artist: 0.90, Album: 0.65, Track: 0.70, Composite: 0.80},
		Weights:      Weights{Artist: 1, Album: 0.75, Track: 1},
		IgnoredTerms: DefaultIgnoredTerms,
		RemixTerms:   DefaultRemixTerms,
		Market:       "US",
		SearchLimit:  catalog.DefaultSearchLimit,
	}
}

// stage describes one step of the cascade.
type stage struct {
	name            Stage
	searchType      catalog.SearchType
	scoreFields     []Field
	thresholdFields []Field
	required        Field
}

var (
	trackStage = stage{
		name:            StageTrack,
		searchType:      catalog.SearchTrack,
		scoreFields:     []Field{FieldArtist, FieldAlbum, FieldTrack},
		thresholdFields: []Field{FieldAlbum, FieldTrack},
		required:        FieldTrack,
	}
	albumStage = stage{
		name:            StageAlbum,
		searchType:      catalog.SearchAlbum,
		scoreFields:     []Field{FieldArtist, FieldAlbum},
		thresholdFields: []Field{FieldArtist, FieldAlbum},
	}
	artistStage = stage{
		name:            StageArtist,
		searchType:      catalog.SearchArtist,
		scoreFields:     []Field{FieldArtist},
		thresholdFields: []Field{FieldArtist},
	}
)

// next returns the stage that follows s when s leaves no survivor.
func (s stage) next(input InputRecord) (stage, bool) {
	switch s.name {
	case StageTrack:
		if input.Has(FieldAlbum) {
			return albumStage, true
		}
		return artistStage, true
	case StageAlbum:
		return artistStage, true
	}
	return stage{}, false
}

// terms builds the catalog search terms for the stage.
func (s stage) terms(input InputRecord) []catalog.Term {
	artist := queryValue(input, FieldArtist)
	switch s.name {
	case StageTrack:
		return catalog.TrackTerms(artist, queryValue(input, FieldTrack))
	case StageAlbum:
		return catalog.AlbumTerms(artist, queryValue(input, FieldAlbum))
	}
	return catalog.ArtistTerms(artist)
}

func queryValue(input InputRecord, f Field) string {
	v, ok := input.Value(f)
	if !ok {
		return ""
	}
	return Query(f, v)
}

// StageResult is the ranked survivor list of one cascade stage.
type StageResult struct {
	Stage      Stage    `json:"stage"`
	Query      string   `json:"query"`
	Candidates int      `json:"candidates"`
	Matches    []Match  `json:"matches"`
	Skipped    bool     `json:"skipped,omitempty"`
	Duration   Duration `json:"duration_ms"`
}

// Duration is a time.Duration that marshals as milliseconds.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return fmt.Appendf(nil, "%d", time.Duration(d).Milliseconds()), nil
}

// Resolver runs the track, album, artist search cascade against a catalog
// and returns the single best match.
type Resolver struct {
	searcher   catalog.Searcher
	aggregator *Aggregator
	filter     *Filter
	opts       Options
	logger     *slog.Logger
}

// NewResolver creates a Resolver that searches through searcher.
func NewResolver(searcher catalog.Searcher, opts Options, logger *slog.Logger) *Resolver {
	scorer := NewScorer(opts.IgnoredTerms, DefaultPenalties(opts.RemixTerms))
	return &Resolver{
		searcher:   searcher,
		aggregator: NewAggregator(scorer, opts.Weights),
		filter:     NewFilter(opts.Thresholds),
		opts:       opts,
		logger:     logger.With(slog.String("component", "resolver")),
	}
}

// Resolve returns the best match for input. It returns ErrEmptyInput for an
// input with no values, ErrNoMatch when no stage produced a survivor, and
// catalog errors unchanged.
func (r *Resolver) Resolve(ctx context.Context, input InputRecord) (*Match, error) {
	results, err := r.Stages(ctx, input)
	if err != nil {
		return nil, err
	}

	last := results[len(results)-1]
	if len(last.Matches) == 0 {
		return nil, ErrNoMatch
	}
	best := last.Matches[0]
	return &best, nil
}

// Stages runs the cascade and returns every attempted stage in order. The
// last element holds the winning matches, or no matches when the cascade
// was exhausted.
func (r *Resolver) Stages(ctx context.Context, input InputRecord) ([]StageResult, error) {
	if input.Empty() {
		return nil, ErrEmptyInput
	}

	logger := r.logger.With(slog.String("resolve_id", uuid.NewString()))
	start := time.Now()

	var results []StageResult
	s, ok := trackStage, true
	for ok {
		res, err := r.runStage(ctx, s, input, logger)
		if err != nil {
			logger.Warn("resolution aborted",
				slog.String("stage", string(s.name)),
				slog.String("error", err.Error()))
			return nil, err
		}
		results = append(results, res)
		if len(res.Matches) > 0 {
			best := res.Matches[0]
			logger.Info("resolved",
				slog.String("stage", string(s.name)),
				slog.Float64("composite", best.Score.Composite),
				slog.Any("artist_ids", best.Candidate.ArtistIDs()),
				slog.Duration("duration", time.Since(start)))
			return results, nil
		}
		s, ok = s.next(input)
	}

	logger.Info("no match",
		slog.Int("stages", len(results)),
		slog.Duration("duration", time.Since(start)))
	return results, nil
}

func (r *Resolver) runStage(ctx context.Context, s stage, input InputRecord, logger *slog.Logger) (StageResult, error) {
	start := time.Now()
	terms := s.terms(input)
	res := StageResult{Stage: s.name, Query: catalog.EncodeQuery(terms)}

	if res.Query == "" {
		res.Skipped = true
		logger.Debug("stage skipped, empty query", slog.String("stage", string(s.name)))
		return res, nil
	}

	found, err := r.searcher.Search(ctx, terms, catalog.SearchOptions{
		Type:   s.searchType,
		Market: r.opts.Market,
		Limit:  r.opts.SearchLimit,
	})
	if err != nil {
		return res, err
	}

	candidates := candidatesFrom(s.searchType, found)
	scored := r.aggregator.Score(input, candidates, s.scoreFields)
	for i := range scored {
		scored[i].Stage = s.name
	}
	res.Candidates = len(candidates)
	res.Matches = r.filter.Apply(scored, s.thresholdFields, s.required)
	res.Duration = Duration(time.Since(start))

	attrs := []any{
		slog.String("stage", string(s.name)),
		slog.String("query", res.Query),
		slog.Int("candidates", res.Candidates),
		slog.Int("survivors", len(res.Matches)),
	}
	if len(res.Matches) > 0 {
		attrs = append(attrs, slog.Float64("best_composite", res.Matches[0].Score.Composite))
	}
	logger.Debug("stage complete", attrs...)
	return res, nil
}

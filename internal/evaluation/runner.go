package evaluation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sydlexius/songmatch/internal/match"
)

// Resolver resolves one input record.
type Resolver interface {
	Resolve(ctx context.Context, input match.InputRecord) (*match.Match, error)
}

// CaseResult is the outcome of resolving one case.
type CaseResult struct {
	Case Case
	// Match is nil when nothing matched or resolution failed.
	Match *match.Match
	// Err is a resolution failure other than no-match.
	Err           error
	ArtistCorrect bool
	AlbumCorrect  bool
	TrackCorrect  bool
}

// Correct reports whether every field resolved to the expected id.
func (r CaseResult) Correct() bool {
	return r.ArtistCorrect && r.AlbumCorrect && r.TrackCorrect
}

// Got returns the comma-joined artist ids, album id and track id that were
// resolved, empty where absent.
func (r CaseResult) Got() (artists, album, track string) {
	if r.Match == nil {
		return "", "", ""
	}
	c := r.Match.Candidate
	artists = strings.Join(c.ArtistIDs(), ",")
	if c.Album != nil {
		album = c.Album.ID
	}
	if c.Track != nil {
		track = c.Track.ID
	}
	return artists, album, track
}

// Summary is the outcome of one evaluation run.
type Summary struct {
	ID         string
	CasesFile  string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []CaseResult
}

// Checks returns the number of field checks: three per case.
func (s *Summary) Checks() int { return 3 * len(s.Results) }

// CorrectChecks returns the number of field checks that passed.
func (s *Summary) CorrectChecks() int {
	n := 0
	for _, r := range s.Results {
		for _, ok := range []bool{r.ArtistCorrect, r.AlbumCorrect, r.TrackCorrect} {
			if ok {
				n++
			}
		}
	}
	return n
}

// CorrectCases returns the number of cases with every field correct.
func (s *Summary) CorrectCases() int {
	n := 0
	for _, r := range s.Results {
		if r.Correct() {
			n++
		}
	}
	return n
}

// Errors returns the number of cases whose resolution failed.
func (s *Summary) Errors() int {
	n := 0
	for _, r := range s.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Accuracy returns the percentage of field checks that passed, or 0 for an
// empty run.
func (s *Summary) Accuracy() float64 {
	if s.Checks() == 0 {
		return 0
	}
	return float64(s.CorrectChecks()) / float64(s.Checks()) * 100
}

// Runner resolves cases one at a time and scores them.
type Runner struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(resolver Resolver, logger *slog.Logger) *Runner {
	return &Runner{
		resolver: resolver,
		logger:   logger.With(slog.String("component", "evaluation")),
	}
}

// Run resolves every case in order. A failing case is recorded and the run
// continues; only context cancellation stops it early. onResult, if not nil,
// is called after each case.
func (r *Runner) Run(ctx context.Context, casesFile string, cases []Case, onResult func(CaseResult)) (*Summary, error) {
	s := &Summary{
		ID:        uuid.NewString(),
		CasesFile: casesFile,
		StartedAt: time.Now().UTC(),
		Results:   make([]CaseResult, 0, len(cases)),
	}

	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := CaseResult{Case: c}
		m, err := r.resolver.Resolve(ctx, c.Input)
		switch {
		case err == nil:
			res.Match = m
		case errors.Is(err, match.ErrNoMatch):
		default:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			res.Err = err
			r.logger.Warn("case failed",
				slog.Int("line", c.Line),
				slog.String("artist", c.Input.Artist),
				slog.String("track", c.Input.Track),
				slog.String("error", err.Error()))
		}
		score(&res)

		s.Results = append(s.Results, res)
		if onResult != nil {
			onResult(res)
		}
	}

	s.FinishedAt = time.Now().UTC()
	r.logger.Info("evaluation complete",
		slog.String("run_id", s.ID),
		slog.Int("cases", len(s.Results)),
		slog.Int("errors", s.Errors()),
		slog.Float64("accuracy", s.Accuracy()))
	return s, nil
}

func score(res *CaseResult) {
	artists, album, track := res.Got()
	res.ArtistCorrect = artists == res.Case.ExpectedArtists
	res.AlbumCorrect = album == res.Case.ExpectedAlbum
	res.TrackCorrect = track == res.Case.ExpectedTrack
}

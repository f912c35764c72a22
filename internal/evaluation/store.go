package evaluation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Run is a stored evaluation run.
type Run struct {
	ID         string
	CasesFile  string
	StartedAt  time.Time
	FinishedAt time.Time
	Cases      int
	Correct    int
	Errors     int
	Accuracy   float64
}

// Store persists evaluation runs in the local database.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over a migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save records a run and its per-case results.
func (s *Store) Save(ctx context.Context, sum *Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO evaluation_runs (id, cases_file, started_at, finished_at, cases, correct, errors, accuracy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID, sum.CasesFile,
		sum.StartedAt.UTC().Format(time.RFC3339), sum.FinishedAt.UTC().Format(time.RFC3339),
		len(sum.Results), sum.CorrectCases(), sum.Errors(), sum.Accuracy(),
	)
	if err != nil {
		return fmt.Errorf("saving evaluation run: %w", err)
	}

	for i, r := range sum.Results {
		gotArtists, gotAlbum, gotTrack := r.Got()
		var stage string
		var composite float64
		if r.Match != nil {
			stage = string(r.Match.Stage)
			composite = r.Match.Score.Composite
		}
		var errMsg string
		if r.Err != nil {
			errMsg = r.Err.Error()
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO evaluation_results (
				run_id, position, artist, album, track,
				expected_artists, expected_album, expected_track,
				got_artists, got_album, got_track, stage, composite,
				artist_correct, album_correct, track_correct, error
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sum.ID, i, r.Case.Input.Artist, r.Case.Input.Album, r.Case.Input.Track,
			r.Case.ExpectedArtists, r.Case.ExpectedAlbum, r.Case.ExpectedTrack,
			gotArtists, gotAlbum, gotTrack, stage, composite,
			boolToInt(r.ArtistCorrect), boolToInt(r.AlbumCorrect), boolToInt(r.TrackCorrect), errMsg,
		)
		if err != nil {
			return fmt.Errorf("saving result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing evaluation run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of 0 or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, cases_file, started_at, finished_at, cases, correct, errors, accuracy
		FROM evaluation_runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing evaluation runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.CasesFile, &started, &finished, &r.Cases, &r.Correct, &r.Errors, &r.Accuracy); err != nil {
			return nil, fmt.Errorf("scanning evaluation run: %w", err)
		}
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FailedCases returns the inputs of the cases a run got wrong, formatted as
// "artist / album / track", in file order.
func (s *Store) FailedCases(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT artist, album, track FROM evaluation_results
		WHERE run_id = ? AND NOT (artist_correct AND album_correct AND track_correct)
		ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing failed cases: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []string
	for rows.Next() {
		var artist, album, track string
		if err := rows.Scan(&artist, &album, &track); err != nil {
			return nil, fmt.Errorf("scanning failed case: %w", err)
		}
		out = append(out, strings.Join([]string{artist, album, track}, " / "))
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sydlexius/songmatch/internal/evaluation"
	"github.com/sydlexius/songmatch/internal/match"
	"github.com/sydlexius/songmatch/internal/watcher"
)

type evaluateOptions struct {
	casesPath    string
	record       bool
	watch        bool
	failuresOnly bool
}

func newEvaluateCommand(ctx *commandContext) *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate [cases.tsv]",
		Short: "Measure resolution accuracy against labelled cases",
		Long: `Evaluate resolves every row of a tab-separated cases file and compares the
result with the expected catalog identifiers. Each row holds:

  artist  album  track  expected_artist_ids  expected_album_id  expected_track_id

Artist ids are comma-separated. Missing trailing columns are empty, blank
lines and lines starting with # are skipped. Accuracy is the share of
correct artist, album and track checks across all cases.

Examples:
  songmatch evaluate testdata/cases.tsv
  songmatch evaluate --cases cases.tsv --record
  songmatch evaluate cases.tsv --watch --failures-only`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.casesPath = args[0]
			}
			if strings.TrimSpace(opts.casesPath) == "" {
				return errors.New("no cases file given; pass it as an argument or with --cases")
			}
			if opts.watch && ctx.jsonFlag {
				return errors.New("--watch cannot be combined with --json")
			}

			if !opts.watch {
				return runEvaluation(cmd, ctx, opts)
			}
			return watchEvaluation(cmd, ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.casesPath, "cases", "", "Tab-separated cases file")
	cmd.Flags().BoolVar(&opts.record, "record", false, "Store the run and its results in the local database")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Re-run whenever the cases or configuration file changes")
	cmd.Flags().BoolVar(&opts.failuresOnly, "failures-only", false, "Only print cases with an incorrect field")
	return cmd
}

func runEvaluation(cmd *cobra.Command, ctx *commandContext, opts evaluateOptions) error {
	runCtx := cmd.Context()
	out := cmd.OutOrStdout()

	cases, err := evaluation.LoadCases(opts.casesPath)
	if err != nil {
		return err
	}
	resolver, err := ctx.resolver(runCtx)
	if err != nil {
		return err
	}

	var onResult func(evaluation.CaseResult)
	if !ctx.jsonFlag {
		onResult = func(res evaluation.CaseResult) {
			if opts.failuresOnly && res.Correct() && res.Err == nil {
				return
			}
			printCaseResult(out, res)
		}
	}

	runner := evaluation.NewRunner(resolver, ctx.log())
	sum, err := runner.Run(runCtx, opts.casesPath, cases, onResult)
	if err != nil {
		return err
	}

	if opts.record {
		db, err := ctx.database(runCtx)
		if err != nil {
			return err
		}
		if err := evaluation.NewStore(db).Save(runCtx, sum); err != nil {
			return err
		}
	}

	if ctx.jsonFlag {
		return writeJSON(cmd, newEvaluationReport(sum))
	}
	printSummary(out, sum, opts.record)
	return nil
}

func watchEvaluation(cmd *cobra.Command, ctx *commandContext, opts evaluateOptions) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if err := runEvaluation(cmd, ctx, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		fmt.Fprintln(errOut, "evaluation failed:", err)
	}

	configPath, err := filepath.Abs(ctx.configPath())
	if err != nil {
		configPath = ctx.configPath()
	}

	svc := watcher.NewService(func(_ context.Context, changed []string) error {
		if slices.Contains(changed, configPath) {
			if _, err := ctx.reloadConfig(); err != nil {
				fmt.Fprintln(errOut, "keeping previous configuration:", err)
			}
		}
		fmt.Fprintf(out, "\nChanged: %s\n\n", strings.Join(changed, ", "))
		if err := runEvaluation(cmd, ctx, opts); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(errOut, "evaluation failed:", err)
		}
		return nil
	}, ctx.log(), opts.casesPath, configPath)

	fmt.Fprintf(out, "\nWatching %s; press Ctrl-C to stop\n", strings.Join(svc.Paths(), ", "))
	svc.Start(cmd.Context())
	return nil
}

func printCaseResult(w io.Writer, res evaluation.CaseResult) {
	in := res.Case.Input
	source := []string{"source", in.Artist, in.Album, in.Track, ""}

	result := []string{"result", "", "", "", ""}
	if res.Err != nil {
		result[1] = "X error: " + res.Err.Error()
	} else {
		var artists, album, track string
		var score match.Score
		if m := res.Match; m != nil {
			score = m.Score
			artists = strings.Join(m.Candidate.ArtistNames(), ", ")
			if m.Candidate.Album != nil {
				album = m.Candidate.Album.Name
			}
			if m.Candidate.Track != nil {
				track = m.Candidate.Track.Name
			}
			result[4] = formatScore(score.Composite)
		}
		result[1] = resultCell(artists, score, match.FieldArtist, res.ArtistCorrect)
		result[2] = resultCell(album, score, match.FieldAlbum, res.AlbumCorrect)
		result[3] = resultCell(track, score, match.FieldTrack, res.TrackCorrect)
	}

	printTable(w,
		[]string{fmt.Sprintf("Line %d", res.Case.Line), "Artist", "Album", "Track", "Composite"},
		[][]string{source, result},
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight})
}

// resultCell shows the resolved name with its score, prefixed with X when
// the resolved id differs from the expected one.
func resultCell(name string, s match.Score, f match.Field, correct bool) string {
	cell := name
	if v, ok := s.Get(f); ok {
		cell = fmt.Sprintf("%s (%s)", name, formatScore(v))
	}
	if !correct {
		cell = strings.TrimSpace("X " + cell)
	}
	return cell
}

func printSummary(w io.Writer, sum *evaluation.Summary, recorded bool) {
	fmt.Fprintf(w, "Accuracy: %.5f%% (%d/%d checks, %d/%d cases correct, %d errors) in %s\n",
		sum.Accuracy(), sum.CorrectChecks(), sum.Checks(), sum.CorrectCases(), len(sum.Results),
		sum.Errors(), sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond))
	if recorded {
		fmt.Fprintf(w, "Recorded run %s\n", sum.ID)
	}
}

type evaluationReport struct {
	ID            string       `json:"id"`
	CasesFile     string       `json:"cases_file"`
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    time.Time    `json:"finished_at"`
	Cases         int          `json:"cases"`
	CorrectCases  int          `json:"correct_cases"`
	Checks        int          `json:"checks"`
	CorrectChecks int          `json:"correct_checks"`
	Errors        int          `json:"errors"`
	Accuracy      float64      `json:"accuracy"`
	Results       []caseReport `json:"results"`
}

type idTriple struct {
	Artists string `json:"artists"`
	Album   string `json:"album"`
	Track   string `json:"track"`
}

type caseReport struct {
	Line          int               `json:"line"`
	Input         match.InputRecord `json:"input"`
	Expected      idTriple          `json:"expected"`
	Got           idTriple          `json:"got"`
	Match         *match.Match      `json:"match,omitempty"`
	ArtistCorrect bool              `json:"artist_correct"`
	AlbumCorrect  bool              `json:"album_correct"`
	TrackCorrect  bool              `json:"track_correct"`
	Error         string            `json:"error,omitempty"`
}

func newEvaluationReport(sum *evaluation.Summary) evaluationReport {
	rep := evaluationReport{
		ID:            sum.ID,
		CasesFile:     sum.CasesFile,
		StartedAt:     sum.StartedAt,
		FinishedAt:    sum.FinishedAt,
		Cases:         len(sum.Results),
		CorrectCases:  sum.CorrectCases(),
		Checks:        sum.Checks(),
		CorrectChecks: sum.CorrectChecks(),
		Errors:        sum.Errors(),
		Accuracy:      sum.Accuracy(),
		Results:       make([]caseReport, 0, len(sum.Results)),
	}
	for _, res := range sum.Results {
		artists, album, track := res.Got()
		cr := caseReport{
			Line:  res.Case.Line,
			Input: res.Case.Input,
			Expected: idTriple{
				Artists: res.Case.ExpectedArtists,
				Album:   res.Case.ExpectedAlbum,
				Track:   res.Case.ExpectedTrack,
			},
			Got:           idTriple{Artists: artists, Album: album, Track: track},
			Match:         res.Match,
			ArtistCorrect: res.ArtistCorrect,
			AlbumCorrect:  res.AlbumCorrect,
			TrackCorrect:  res.TrackCorrect,
		}
		if res.Err != nil {
			cr.Error = res.Err.Error()
		}
		rep.Results = append(rep.Results, cr)
	}
	return rep
}

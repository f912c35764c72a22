package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sydlexius/songmatch/internal/match"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var input match.InputRecord
	var explain bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Find the catalog entry that best matches an artist, album and track",
		Long: `Resolve searches the catalog for the track first, then the album, then the
artist, stopping at the first stage that yields a candidate above every
threshold. Any combination of --artist, --album and --track may be given.

Examples:
  songmatch resolve --artist "Daft Punk" --track "One More Time"
  songmatch resolve --artist "Daft Punk" --album Discovery --explain
  songmatch resolve --artist Beyoncé --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := ctx.resolver(cmd.Context())
			if err != nil {
				return err
			}

			if explain {
				stages, err := resolver.Stages(cmd.Context(), input)
				if err != nil {
					return err
				}
				if ctx.jsonFlag {
					return writeJSON(cmd, stages)
				}
				printStages(cmd.OutOrStdout(), stages)
				if len(stages[len(stages)-1].Matches) == 0 {
					return match.ErrNoMatch
				}
				return nil
			}

			m, err := resolver.Resolve(cmd.Context(), input)
			if err != nil {
				return err
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, m)
			}
			printMatch(cmd.OutOrStdout(), m)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Artist, "artist", "", "Artist name")
	cmd.Flags().StringVar(&input.Album, "album", "", "Album name")
	cmd.Flags().StringVar(&input.Track, "track", "", "Track name")
	cmd.Flags().BoolVar(&explain, "explain", false, "Show every stage's query and ranked survivors")
	return cmd
}

func printMatch(w io.Writer, m *match.Match) {
	var rows [][]string
	c := m.Candidate
	for i, a := range c.Artists {
		field := ""
		if i == 0 {
			field = string(match.FieldArtist)
		}
		rows = append(rows, []string{field, a.ID, a.Name, scoreCell(m.Score, match.FieldArtist, i == 0)})
	}
	if c.Album != nil {
		rows = append(rows, []string{string(match.FieldAlbum), c.Album.ID, c.Album.Name, scoreCell(m.Score, match.FieldAlbum, true)})
	}
	if c.Track != nil {
		rows = append(rows, []string{string(match.FieldTrack), c.Track.ID, c.Track.Name, scoreCell(m.Score, match.FieldTrack, true)})
	}
	rows = append(rows, []string{"composite", "", "", formatScore(m.Score.Composite)})

	printTable(w, []string{"Field", "ID", "Name", "Score"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
	fmt.Fprintf(w, "Matched at the %s stage\n", m.Stage)
}

func scoreCell(s match.Score, f match.Field, show bool) string {
	if !show {
		return ""
	}
	v, ok := s.Get(f)
	if !ok {
		return "-"
	}
	return formatScore(v)
}

func printStages(w io.Writer, stages []match.StageResult) {
	for i, st := range stages {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if st.Skipped {
			fmt.Fprintf(w, "Stage %s: skipped, nothing searchable in the input\n", st.Stage)
			continue
		}
		fmt.Fprintf(w, "Stage %s: %s\n", st.Stage, st.Query)
		fmt.Fprintf(w, "  %d candidates, %d above thresholds (%s)\n",
			st.Candidates, len(st.Matches), time.Duration(st.Duration).Round(time.Millisecond))
		if len(st.Matches) == 0 {
			continue
		}

		rows := make([][]string, 0, len(st.Matches))
		for rank, m := range st.Matches {
			album, track := "", ""
			if m.Candidate.Album != nil {
				album = m.Candidate.Album.Name
			}
			if m.Candidate.Track != nil {
				track = m.Candidate.Track.Name
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", rank+1),
				strings.Join(m.Candidate.ArtistNames(), ", "),
				album,
				track,
				scoreCell(m.Score, match.FieldArtist, true),
				scoreCell(m.Score, match.FieldAlbum, true),
				scoreCell(m.Score, match.FieldTrack, true),
				formatScore(m.Score.Composite),
			})
		}
		printTable(w,
			[]string{"#", "Artists", "Album", "Track", "Artist", "Album", "Track", "Composite"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight})
	}
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sydlexius/songmatch/internal/catalog"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Fetch a catalog artist, album or track by id",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "artist <id>",
			Short: "Fetch an artist",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := ctx.catalogClient(cmd.Context())
				if err != nil {
					return err
				}
				a, err := client.GetArtist(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonFlag {
					return writeJSON(cmd, a)
				}
				printProperties(cmd, [][]string{
					{"ID", a.ID},
					{"Name", a.Name},
					{"Popularity", popularityText(a.Popularity)},
					{"Genres", strings.Join(a.Genres, ", ")},
				})
				return nil
			},
		},
		&cobra.Command{
			Use:   "album <id>",
			Short: "Fetch an album",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := ctx.catalogClient(cmd.Context())
				if err != nil {
					return err
				}
				a, err := client.GetAlbum(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonFlag {
					return writeJSON(cmd, a)
				}
				printProperties(cmd, [][]string{
					{"ID", a.ID},
					{"Name", a.Name},
					{"Artists", artistNames(a.Artists)},
					{"Type", a.AlbumType},
					{"Released", a.ReleaseDate},
					{"Tracks", fmt.Sprintf("%d", a.TotalTracks)},
					{"Popularity", popularityText(a.Popularity)},
				})
				return nil
			},
		},
		&cobra.Command{
			Use:   "track <id>",
			Short: "Fetch a track",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := ctx.catalogClient(cmd.Context())
				if err != nil {
					return err
				}
				t, err := client.GetTrack(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonFlag {
					return writeJSON(cmd, t)
				}
				album := ""
				if t.Album != nil {
					album = t.Album.Name
				}
				printProperties(cmd, [][]string{
					{"ID", t.ID},
					{"Name", t.Name},
					{"Artists", artistNames(t.Artists)},
					{"Album", album},
					{"Disc / Track", fmt.Sprintf("%d / %d", t.DiscNumber, t.TrackNumber)},
					{"Duration", t.Duration.Round(time.Second).String()},
					{"Explicit", yesNo(t.Explicit)},
					{"Popularity", popularityText(t.Popularity)},
				})
				return nil
			},
		},
	)
	return cmd
}

func printProperties(cmd *cobra.Command, rows [][]string) {
	printTable(cmd.OutOrStdout(), []string{"Property", "Value"}, rows, nil)
}

func artistNames(artists []catalog.Artist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func popularityText(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *p)
}

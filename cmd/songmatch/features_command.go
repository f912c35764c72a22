package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sydlexius/songmatch/internal/catalog"
)

func newFeaturesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "features <track-id>...",
		Short: "Show audio features for one or more tracks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.catalogClient(cmd.Context())
			if err != nil {
				return err
			}

			found := make(map[string]*catalog.TrackFeatures, len(args))
			for _, id := range args {
				f, err := client.GetTrackFeatures(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("track %s: %w", id, err)
				}
				found[id] = f
			}

			if ctx.jsonFlag {
				return writeJSON(cmd, found)
			}

			rows := make([][]string, 0, len(args))
			for _, id := range args {
				f := found[id]
				if f == nil {
					rows = append(rows, []string{id, "no features"})
					continue
				}
				rows = append(rows, []string{
					id,
					fmt.Sprintf("%.3f", f.Danceability),
					fmt.Sprintf("%.3f", f.Energy),
					fmt.Sprintf("%.3f", f.Valence),
					fmt.Sprintf("%.3f", f.Acousticness),
					fmt.Sprintf("%.1f", f.Tempo),
					fmt.Sprintf("%d", f.Key),
					fmt.Sprintf("%d", f.Mode),
					fmt.Sprintf("%.1f", f.Loudness),
					f.Duration.Round(time.Second).String(),
				})
			}
			printTable(cmd.OutOrStdout(),
				[]string{"Track", "Dance", "Energy", "Valence", "Acoustic", "Tempo", "Key", "Mode", "Loudness", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight})
			return nil
		},
	}
}

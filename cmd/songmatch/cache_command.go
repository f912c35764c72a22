package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sydlexius/songmatch/internal/cache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persistent response cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired responses from the SQLite cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			db, err := ctx.database(cmd.Context())
			if err != nil {
				return err
			}
			n, err := cache.NewSQLite(db, cfg.CacheTTL()).Prune(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, map[string]int64{"pruned": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired responses\n", n)
			return nil
		},
	})
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sydlexius/songmatch/internal/version"
)

func newVersionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.jsonFlag {
				return writeJSON(cmd, map[string]string{
					"version": version.Version,
					"commit":  version.Commit,
					"date":    version.Date,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
}

package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "songmatch",
		Short: "Resolve artist, album and track names to catalog identifiers",
		Long: `songmatch searches a music catalog for free-form artist, album and track
names and picks the single best match using fuzzy name similarity, weighted
field scores and per-field thresholds.

Configuration is read from songmatch.yaml (or --config), a .env file in the
working directory, and SM_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx.setErrorOutput(cmd.ErrOrStderr())
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path (default songmatch.yaml or $SM_CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevelFlag, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&ctx.jsonFlag, "json", false, "Write JSON instead of tables")

	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newEvaluateCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newLookupCommand(ctx))
	rootCmd.AddCommand(newFeaturesCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))
	rootCmd.AddCommand(newDBCommand(ctx))
	rootCmd.AddCommand(newVersionCommand(ctx))

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sydlexius/songmatch/internal/database"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect and maintain the local database",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show database size, schema version and row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := ctx.maintenance(cmd)
			if err != nil {
				return err
			}
			st, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, st)
			}
			printProperties(cmd, [][]string{
				{"Path", st.Path},
				{"Schema version", fmt.Sprintf("%d", st.SchemaVersion)},
				{"File size", fmt.Sprintf("%d bytes", st.DBFileSize)},
				{"WAL size", fmt.Sprintf("%d bytes", st.WALFileSize)},
				{"Pages", fmt.Sprintf("%d x %d bytes", st.PageCount, st.PageSize)},
				{"Cached responses", fmt.Sprintf("%d", st.CachedResponses)},
				{"Evaluation runs", fmt.Sprintf("%d", st.EvaluationRuns)},
			})
			return nil
		},
	})

	var vacuum bool
	optimize := &cobra.Command{
		Use:   "optimize",
		Short: "Run PRAGMA optimize and checkpoint the WAL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := ctx.maintenance(cmd)
			if err != nil {
				return err
			}
			if err := m.Optimize(cmd.Context()); err != nil {
				return err
			}
			if vacuum {
				if err := m.Vacuum(cmd.Context()); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database optimized")
			return nil
		},
	}
	optimize.Flags().BoolVar(&vacuum, "vacuum", false, "Also rebuild the database file with VACUUM")
	cmd.AddCommand(optimize)

	return cmd
}

func (c *commandContext) maintenance(cmd *cobra.Command) (*database.Maintenance, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	db, err := c.database(cmd.Context())
	if err != nil {
		return nil, err
	}
	return database.NewMaintenance(db, cfg.Database.Path, c.log()), nil
}

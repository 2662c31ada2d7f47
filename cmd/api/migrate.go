package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"todo-api/internal/database"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  "Manage the database schema. Without a subcommand, pending migrations are applied.",
		Args:  cobra.NoArgs,
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.load(nil)
			if err != nil {
				return err
			}
			db, dialect, err := database.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			results, err := database.Migrate(cmd.Context(), db, dialect)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(results))
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show which migrations are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.load(nil)
			if err != nil {
				return err
			}
			db, dialect, err := database.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			statuses, err := database.MigrationStatus(cmd.Context(), db, dialect)
			if err != nil {
				return err
			}
			writeMigrationStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	}

	cmd.AddCommand(up, status)
	cmd.RunE = up.RunE
	return cmd
}

func writeMigrationStatus(w io.Writer, statuses []*goose.MigrationStatus) {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		applied := "-"
		if !s.AppliedAt.IsZero() {
			applied = s.AppliedAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			strconv.FormatInt(s.Source.Version, 10),
			s.Source.Path,
			string(s.State),
			applied,
		})
	}
	fmt.Fprintln(w, renderTable([]column{
		{Header: "Version", Align: text.AlignRight},
		{Header: "File"},
		{Header: "State"},
		{Header: "Applied At"},
	}, rows))
}

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"todo-api/internal/models"
	"todo-api/internal/repositories"
	"todo-api/internal/services"
)

func newDumpCommand(ctx *commandContext) *cobra.Command {
	var statusFlag, sortFlag string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the stored todos as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, dialect, err := ctx.openStore(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := services.NewTodoService(repositories.NewTodoRepository(db, dialect))
			todos, err := svc.ListTodos(cmd.Context(), statusFlag, sortFlag)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeTodos(out, todos, colorEnabled(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status (true or false)")
	cmd.Flags().StringVar(&sortFlag, "sort-by", "id", "Sort by id, text or status")
	return cmd
}

func writeTodos(w io.Writer, todos []*models.Todo, color bool) {
	rows := make([][]string, 0, len(todos))
	for _, t := range todos {
		rows = append(rows, []string{strconv.Itoa(t.ID), statusLabel(t.Status), t.Text})
	}
	fmt.Fprintln(w, renderTable([]column{
		{Header: "ID", Align: text.AlignRight},
		{Header: "Status", Transform: statusColors(color)},
		{Header: "Text"},
	}, rows))
	fmt.Fprintf(w, "%d todo(s)\n", len(todos))
}

package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (a *App) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [task-id]",
		Short:   "Remove a task and compact its slot",
		Example: `  crewplan rm 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			t, err := a.repo.GetTask(ctx, id)
			if err != nil {
				return err
			}
			if err := a.roster.Remove(ctx, id); err != nil {
				return fmt.Errorf("removing task: %w", err)
			}

			fmt.Printf("Removed task #%d: %s\n", t.ID, t.Title)
			return nil
		},
	}
}

package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mgallego/crewplan/internal/slot"
)

func (a *App) resizeCmd() *cobra.Command {
	var (
		edge  string
		delta int
	)

	cmd := &cobra.Command{
		Use:   "resize [task-id]",
		Short: "Grow or shrink a task by dragging one of its edges",
		Long: `Resize a task by moving its left or right edge. A positive delta
moves the edge rightward, a negative one leftward, so --edge=right
--delta=1 grows the task and --edge=left --delta=-1 grows it the other
way. Growth may push siblings aside; if the slot cannot absorb the new
size, the resize is rejected and nothing changes.`,
		Example: `  crewplan resize 42 --edge=right --delta=1
  crewplan resize 42 --edge=left --delta=-1`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			var e slot.Edge
			switch edge {
			case "left", "l":
				e = slot.EdgeLeft
			case "right", "r":
				e = slot.EdgeRight
			default:
				return fmt.Errorf("invalid edge %q: use left or right", edge)
			}

			out, err := a.roster.Resize(ctx, id, e, delta)
			if err != nil {
				return fmt.Errorf("resizing task: %w", err)
			}

			fmt.Printf("Task #%d is now %dh at column %d\n", out.Task.ID, out.Task.Hours, *out.Task.Column)
			for _, d := range out.Moved {
				fmt.Println(formatMuted(fmt.Sprintf("  task #%d shifted %d -> %d", d.TaskID, d.From, d.To)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&edge, "edge", "right", "Edge to drag: left or right")
	cmd.Flags().IntVar(&delta, "delta", 0, "Columns to move the edge by (positive is rightward)")

	_ = cmd.MarkFlagRequired("delta")

	return cmd
}

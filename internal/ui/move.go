package ui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgallego/crewplan/internal/dateutil"
	"github.com/mgallego/crewplan/internal/task"
)

func (a *App) moveCmd() *cobra.Command {
	var (
		employee string
		date     string
		period   string
		column   int
	)

	cmd := &cobra.Command{
		Use:   "move [task-id]",
		Short: "Move a task to another slot or column",
		Long: `Move a task to a target column, optionally in a different slot
or for a different employee. Siblings in the destination slot slide
aside to make room; if they cannot, the move is rejected and nothing
changes.

Omitted flags keep the task's current employee, date and period.`,
		Example: `  crewplan move 42 --column=0
  crewplan move 42 --date=friday --period=pm --column=2
  crewplan move 42 --employee=Luis --column=1`,
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
			t, err := a.repo.GetTask(ctx, id)
			if err != nil {
				return err
			}

			employeeID := t.EmployeeID
			if employee != "" {
				emp, err := a.resolveEmployee(ctx, employee)
				if err != nil {
					return err
				}
				employeeID = emp.ID
			}

			day := t.Date
			if date != "" {
				day, err = dateutil.ParseRelativeDate(date, time.Now())
				if err != nil {
					return err
				}
			}

			p := t.Period
			if period != "" {
				p, err = task.ParsePeriod(period)
				if err != nil {
					return err
				}
			}

			out, err := a.roster.Drop(ctx, id, employeeID, day, p, column)
			if err != nil {
				return fmt.Errorf("moving task: %w", err)
			}

			fmt.Printf("Moved task #%d to %s %s, column %d\n",
				out.Task.ID, out.Task.Date.Format("2006-01-02"), out.Task.Period.Label(), *out.Task.Column)
			for _, d := range out.Moved {
				fmt.Println(formatMuted(fmt.Sprintf("  task #%d shifted %d -> %d", d.TaskID, d.From, d.To)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&employee, "employee", "", "Destination employee name or ID")
	cmd.Flags().StringVar(&date, "date", "", "Destination date (YYYY-MM-DD, 'tomorrow', weekday name)")
	cmd.Flags().StringVar(&period, "period", "", "Destination period: am or pm")
	cmd.Flags().IntVar(&column, "column", 0, "Target column (0-3)")

	_ = cmd.MarkFlagRequired("column")

	return cmd
}

package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgallego/crewplan/internal/dateutil"
	"github.com/mgallego/crewplan/internal/task"
)

func (a *App) addCmd() *cobra.Command {
	var (
		employee string
		date     string
		period   string
		hours    int
		auto     bool
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task to an employee's slot",
		Long: `Add a task to an employee's morning or afternoon slot.

The task lands on the rightmost free columns of the slot. With --auto
the date and period are chosen automatically: the first slot at or
after the given date with enough free hours.`,
		Example: `  crewplan add "Install cabinets" --employee=Ana --date=tomorrow --period=am --hours=3
  crewplan add "Snag list" --employee=Ana --hours=1 --auto`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()

			emp, err := a.resolveEmployee(ctx, employee)
			if err != nil {
				return err
			}

			day, err := dateutil.ParseRelativeDate(date, time.Now())
			if err != nil {
				return err
			}

			var t *task.Task
			if auto {
				t, err = a.roster.AddAuto(ctx, emp.ID, args[0], day, hours)
			} else {
				p, perr := task.ParsePeriod(period)
				if perr != nil {
					return perr
				}
				t, err = a.roster.Add(ctx, emp.ID, args[0], day, p, hours)
			}
			if err != nil {
				return fmt.Errorf("adding task: %w", err)
			}

			fmt.Printf("Created task #%d: %s for %s on %s %s (%dh, column %d)\n",
				t.ID,
				t.Title,
				emp.Name,
				t.Date.Format("2006-01-02"),
				t.Period.Label(),
				t.Hours,
				*t.Column,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&employee, "employee", "", "Employee name or ID (required)")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, 'tomorrow', weekday name; default: today)")
	cmd.Flags().StringVar(&period, "period", "am", "Slot period: am or pm")
	cmd.Flags().IntVar(&hours, "hours", 1, "Task hours (1-4)")
	cmd.Flags().BoolVar(&auto, "auto", false, "Pick the first open slot at or after the date")

	_ = cmd.MarkFlagRequired("employee")

	return cmd
}

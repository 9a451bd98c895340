package ui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgallego/crewplan/internal/dateutil"
	"github.com/mgallego/crewplan/internal/task"
)

func (a *App) leaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leave",
		Short: "Manage employee leave",
	}
	cmd.AddCommand(a.leaveAddCmd())
	cmd.AddCommand(a.leaveRmCmd())
	cmd.AddCommand(a.leaveListCmd())
	return cmd
}

func (a *App) leaveAddCmd() *cobra.Command {
	var (
		employee string
		date     string
		period   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Block an employee's slot or whole day",
		Example: `  crewplan leave add --employee=Ana --date=friday
  crewplan leave add --employee=Ana --date=2026-09-14 --period=pm`,
		RunE: func(_ *cobra.Command, _ []string) error {
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

			l := &task.Leave{EmployeeID: emp.ID, Date: day}
			if period != "" {
				p, err := task.ParsePeriod(period)
				if err != nil {
					return err
				}
				l.Period = p
			}

			if err := a.repo.AddLeave(ctx, l); err != nil {
				return fmt.Errorf("adding leave: %w", err)
			}

			scope := "all day"
			if l.Period != "" {
				scope = l.Period.Label()
			}
			fmt.Printf("Leave #%d: %s on %s (%s)\n", l.ID, emp.Name, day.Format("2006-01-02"), scope)
			return nil
		},
	}

	cmd.Flags().StringVar(&employee, "employee", "", "Employee name or ID (required)")
	cmd.Flags().StringVar(&date, "date", "", "Date (default: today)")
	cmd.Flags().StringVar(&period, "period", "", "am or pm; omit for a full-day leave")

	_ = cmd.MarkFlagRequired("employee")

	return cmd
}

func (a *App) leaveRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [leave-id]",
		Short:   "Remove a leave entry",
		Example: `  crewplan leave rm 7`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid leave id %q", args[0])
			}
			if err := a.repo.RemoveLeave(context.Background(), id); err != nil {
				return fmt.Errorf("removing leave: %w", err)
			}
			fmt.Printf("Removed leave #%d\n", id)
			return nil
		},
	}
}

func (a *App) leaveListCmd() *cobra.Command {
	var (
		date string
		days int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leave entries",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()

			from, err := dateutil.ParseRelativeDate(date, time.Now())
			if err != nil {
				return err
			}
			to := from.AddDate(0, 0, days-1)

			leaves, err := a.repo.ListLeaves(ctx, from, to)
			if err != nil {
				return fmt.Errorf("listing leaves: %w", err)
			}
			if len(leaves) == 0 {
				fmt.Println("No leave entries.")
				return nil
			}

			names := make(map[int64]string)
			employees, err := a.repo.ListEmployees(ctx)
			if err != nil {
				return fmt.Errorf("listing employees: %w", err)
			}
			for _, e := range employees {
				names[e.ID] = e.Name
			}

			sort.SliceStable(leaves, func(i, j int) bool {
				if !leaves[i].Date.Equal(leaves[j].Date) {
					return leaves[i].Date.Before(leaves[j].Date)
				}
				return names[leaves[i].EmployeeID] < names[leaves[j].EmployeeID]
			})

			for _, l := range leaves {
				scope := "all day"
				if l.Period != "" {
					scope = l.Period.Label()
				}
				fmt.Printf("  #%-3d %s  %-12s %s\n", l.ID, l.Date.Format("Mon 2006-01-02"), names[l.EmployeeID], scope)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Start date (default: today)")
	cmd.Flags().IntVar(&days, "days", 30, "Number of days to show")

	return cmd
}

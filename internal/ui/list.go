package ui

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgallego/crewplan/internal/dateutil"
	"github.com/mgallego/crewplan/internal/task"
)

func (a *App) listCmd() *cobra.Command {
	var (
		employee string
		date     string
		days     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled tasks",
		Example: `  crewplan list
  crewplan list --employee=Ana --days=14
  crewplan list --date=monday --days=5`,
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

			tasks, err := a.repo.ListTasksByDateRange(ctx, from, to)
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}

			var filterID int64
			if employee != "" {
				emp, err := a.resolveEmployee(ctx, employee)
				if err != nil {
					return err
				}
				filterID = emp.ID
			}

			names := make(map[int64]string)
			employees, err := a.repo.ListEmployees(ctx)
			if err != nil {
				return fmt.Errorf("listing employees: %w", err)
			}
			for _, e := range employees {
				names[e.ID] = e.Name
			}

			bySlot := groupBySlot(tasks)

			var shown []*task.Task
			for _, t := range tasks {
				if filterID != 0 && t.EmployeeID != filterID {
					continue
				}
				shown = append(shown, t)
			}
			if len(shown) == 0 {
				fmt.Println("No tasks scheduled.")
				return nil
			}

			sort.SliceStable(shown, func(i, j int) bool {
				ti, tj := shown[i], shown[j]
				if !ti.Date.Equal(tj.Date) {
					return ti.Date.Before(tj.Date)
				}
				if ti.EmployeeID != tj.EmployeeID {
					return names[ti.EmployeeID] < names[tj.EmployeeID]
				}
				if ti.Period != tj.Period {
					return ti.Period == task.PeriodMorning
				}
				return ti.ID < tj.ID
			})

			lastHeader := ""
			for _, t := range shown {
				header := fmt.Sprintf("%s  %s", t.Date.Format("Mon 2006-01-02"), names[t.EmployeeID])
				if header != lastHeader {
					fmt.Println(formatHeader(header))
					lastHeader = header
				}
				fmt.Println(taskLine(t, bySlot[t.SlotKey()]))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&employee, "employee", "", "Only show tasks for this employee")
	cmd.Flags().StringVar(&date, "date", "", "Start date (default: today)")
	cmd.Flags().IntVar(&days, "days", 7, "Number of days to show")

	return cmd
}

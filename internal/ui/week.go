package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/mgallego/crewplan/internal/dateutil"
	"github.com/mgallego/crewplan/internal/summary"
)

func (a *App) weekCmd() *cobra.Command {
	var (
		date     string
		copyFlag bool
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the weekly load summary per employee",
		Example: `  crewplan week
  crewplan week --date=next-week
  crewplan week --copy`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()

			day, err := dateutil.ParseRelativeDate(date, time.Now())
			if err != nil {
				return err
			}
			monday, _ := dateutil.WeekRange(day)

			week, err := summary.BuildWeekSummary(ctx, a.repo, summary.BuildWeekSummaryOptions{
				WeekStart: monday,
				Workdays:  a.config.Schedule.Workdays,
			})
			if err != nil {
				return fmt.Errorf("building week summary: %w", err)
			}

			text := week.FormatText()
			if copyFlag {
				if err := clipboard.WriteAll(text); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Println("Week summary copied to clipboard.")
				return nil
			}

			rule := strings.Repeat("─", min(termWidth(), 72))
			fmt.Println(formatHeader(fmt.Sprintf("Week of %s", monday.Format("2006-01-02"))))
			fmt.Println(rule)
			fmt.Println(text)
			fmt.Println(formatStats(fmt.Sprintf("Total booked: %dh across %d tasks", week.TotalBooked(), len(week.Tasks))))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any date inside the week to show (default: today)")
	cmd.Flags().BoolVar(&copyFlag, "copy", false, "Copy the summary to the clipboard instead of printing")

	return cmd
}

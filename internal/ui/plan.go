package ui

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgallego/crewplan/internal/assign"
	"github.com/mgallego/crewplan/internal/llm"
)

const maxRetries = 3

func (a *App) planCmd() *cobra.Command {
	var (
		modelFlag string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "plan [description]",
		Short: "Plan crew assignments from natural language input",
		Long: `Use AI to turn a natural language description into scheduled tasks.

The LLM understands dates like "tomorrow", "next Monday" or explicit
YYYY-MM-DD, and sees each employee's free hours and leave for the
coming week.

Examples:
  crewplan plan "Ana installs cabinets Monday morning, Luis paints the hallway pm"
  crewplan plan "spread the 6h of drywall work between Ana and Luis this week"
  crewplan plan "3 hours of snagging for Ana tomorrow" --dry-run

Interactive mode:
  After the AI proposes a schedule, you can:
  - [a]ccept: Save the assignments to the board
  - [m]odify: Provide feedback to adjust the proposal
  - [c]ancel: Exit without saving`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			input := strings.Join(args, " ")

			model := modelFlag
			if model == "" {
				model = a.config.LLM.Model
			}

			client, err := llm.NewClient(a.config.LLM.Provider, model, a.config.LLM.BaseURL)
			if err != nil {
				return fmt.Errorf("creating LLM client: %w", err)
			}

			p := assign.New(client, a.config, a.repo)

			fmt.Println("Planning assignments...")
			result, err := p.PlanWithRetry(context.Background(), input, maxRetries)
			if err != nil {
				return fmt.Errorf("planning: %w", err)
			}

			reader := bufio.NewReader(os.Stdin)
			for {
				displayPlanResult(result)

				if result.HasValidationErrors() {
					fmt.Println("\nValidation errors (LLM retry limit reached):")
					for _, ve := range result.ValidationErrors {
						fmt.Println(formatWarn("  - " + ve.Message))
					}
				}

				if dryRun {
					fmt.Println("\n(Dry run - assignments not saved)")
					return nil
				}

				fmt.Print("\n[a]ccept / [m]odify / [c]ancel: ")
				choice, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				choice = strings.TrimSpace(strings.ToLower(choice))

				switch choice {
				case "a", "accept":
					if result.HasValidationErrors() {
						fmt.Println("Cannot save: there are unresolved validation errors.")
						fmt.Println("Please [m]odify the plan or [c]ancel.")
						continue
					}

					saved, err := p.Save(context.Background(), a.roster, result)
					if err != nil {
						return fmt.Errorf("saving assignments: %w", err)
					}
					fmt.Printf("\n%d assignments saved\n", len(saved))
					return nil

				case "m", "modify":
					fmt.Print("What would you like to change? ")
					modification, err := reader.ReadString('\n')
					if err != nil {
						return fmt.Errorf("reading input: %w", err)
					}
					modification = strings.TrimSpace(modification)
					if modification == "" {
						fmt.Println("No modification provided, showing current plan...")
						continue
					}

					fmt.Println("\nReplanning...")
					result, err = p.ContinuePlanning(context.Background(), modification, maxRetries)
					if err != nil {
						return fmt.Errorf("replanning: %w", err)
					}

				case "c", "cancel":
					fmt.Println("Planning cancelled.")
					return nil

				default:
					fmt.Println("Invalid choice. Please enter 'a', 'm', or 'c'.")
				}
			}
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "LLM model to use (from config if not set)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show proposed assignments without saving")

	return cmd
}

// displayPlanResult shows the planning result to the user.
func displayPlanResult(result *assign.PlanResult) {
	fmt.Println()

	if len(result.Warnings) > 0 {
		fmt.Println("Warnings:")
		for _, w := range result.Warnings {
			fmt.Println(formatWarn("  ! " + w))
		}
		fmt.Println()
	}

	if len(result.Suggestions) > 0 {
		fmt.Println("Suggestions:")
		for _, s := range result.Suggestions {
			fmt.Printf("  * %s\n", s)
		}
		fmt.Println()
	}

	if len(result.Proposals) == 0 {
		fmt.Println("No assignments proposed.")
		return
	}

	byDate := make(map[string][]llm.ProposedAssignment)
	for _, p := range result.Proposals {
		byDate[p.Date] = append(byDate[p.Date], p)
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, dateStr := range dates {
		header := dateStr
		if date, err := time.Parse("2006-01-02", dateStr); err == nil {
			header = date.Format("Monday, January 2")
		}
		fmt.Println(formatHeader(header + ":"))
		fmt.Println(strings.Repeat("-", 60))
		for _, p := range byDate[dateStr] {
			fmt.Printf("  %s %-12s %dh  %s\n", strings.ToUpper(p.Period), p.Employee, p.Hours, p.Title)
		}
		fmt.Println()
	}

	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Total: %d assignments", len(result.Proposals))
	if len(dates) > 1 {
		fmt.Printf(" across %d days", len(dates))
	}
	fmt.Println()
}

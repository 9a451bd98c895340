package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgallego/crewplan/internal/task"
)

func (a *App) employeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage employees",
	}
	cmd.AddCommand(a.employeeAddCmd())
	cmd.AddCommand(a.employeeListCmd())
	return cmd
}

func (a *App) employeeAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "add [name]",
		Short:   "Add an employee",
		Example: `  crewplan employee add "Ana"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			e, err := task.NewEmployee(args[0])
			if err != nil {
				return err
			}
			if err := a.repo.CreateEmployee(context.Background(), e); err != nil {
				return fmt.Errorf("creating employee: %w", err)
			}

			fmt.Printf("Added employee #%d: %s\n", e.ID, e.Name)
			return nil
		},
	}
}

func (a *App) employeeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			employees, err := a.repo.ListEmployees(context.Background())
			if err != nil {
				return fmt.Errorf("listing employees: %w", err)
			}
			if len(employees) == 0 {
				fmt.Println("No employees yet. Add one with: crewplan employee add <name>")
				return nil
			}

			for _, e := range employees {
				fmt.Printf("  #%-3d %s\n", e.ID, e.Name)
			}
			return nil
		},
	}
}

package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgallego/crewplan/internal/config"
	"github.com/mgallego/crewplan/internal/db"
	"github.com/mgallego/crewplan/internal/roster"
	"github.com/mgallego/crewplan/internal/task"
	"github.com/mgallego/crewplan/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo    task.Repository
	roster  *roster.Roster
	config  *config.Config
	root    *cobra.Command
	debug   bool // Enable debug logging
	noColor bool
}

// NewApp creates a new CLI application. The repository may be nil, in
// which case it is opened lazily from the configured database path.
func NewApp(repo task.Repository, cfg *config.Config) *App {
	a := &App{repo: repo, config: cfg}
	if repo != nil {
		a.roster = roster.New(repo, cfg.Schedule.Workdays)
	}

	a.root = &cobra.Command{
		Use:   "crewplan",
		Short: "A CLI tool for crew scheduling",
		Long: `Crewplan schedules a small crew's work week on a slot board.

Every employee has a morning and an afternoon slot per day, each
holding up to 4 hours of tasks laid out on 4 hour-columns. The board
keeps slots packed: dropping or resizing a task shifts its neighbors
as little as possible, and never silently overbooks anyone.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			return tui.RunWithDebug(a.repo, a.config, a.debug)
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to temp file)")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")
	a.root.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if a.noColor {
			DisableColor()
		}
	}

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.employeeCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.rmCmd())
	a.root.AddCommand(a.moveCmd())
	a.root.AddCommand(a.resizeCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.leaveCmd())
	a.root.AddCommand(a.planCmd())

	return a
}

// ensureRepo opens the database on first use.
func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}
	dbPath := a.config.Storage.DBPath
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	repo, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.repo = repo
	a.roster = roster.New(repo, a.config.Schedule.Workdays)
	return nil
}

// Close releases the repository if one was opened.
func (a *App) Close() error {
	if a.repo == nil {
		return nil
	}
	return a.repo.Close()
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("crewplan %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

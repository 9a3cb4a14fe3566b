// Package ui implements the huddle command line.
package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/huddle/internal/config"
	"github.com/javiermolinar/huddle/internal/db"
	"github.com/javiermolinar/huddle/internal/poll"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo    poll.Repository
	ownRepo bool // repo was opened by the App and must be closed by it
	config  *config.Config
	root    *cobra.Command
	debug   bool // Enable debug logging
	noColor bool
	now     func() time.Time
}

// NewApp creates a new CLI application. A nil repo is opened lazily from
// the configured database path by the commands that need it.
func NewApp(repo poll.Repository, cfg *config.Config) *App {
	a := &App{repo: repo, config: cfg, now: time.Now}

	a.root = &cobra.Command{
		Use:   "huddle",
		Short: "Find a meeting time everyone can make",
		Long: `Huddle collects availability for a meeting poll and shows where it overlaps.

Create a poll over a range of dates, let every guest paint the times they
are free (with the mouse in 'huddle edit', or from the command line and
calendar files), then read the heat map or ask for the best slots.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if a.noColor {
				DisableColor()
			}
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging in the editor (writes huddle-debug.log)")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.pollCmd())
	a.root.AddCommand(a.availCmd())
	a.root.AddCommand(a.heatmapCmd())
	a.root.AddCommand(a.bestCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.suggestCmd())
	a.root.AddCommand(a.editCmd())
	a.root.AddCommand(a.mergeCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "huddle %s (commit: %s)\n", Version, Commit)
		},
	}
}

// ensureRepo opens the configured database on first use.
func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}

	path := a.config.Storage.DBPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	repo, err := db.New(path)
	if err != nil {
		return err
	}
	a.repo = repo
	a.ownRepo = true
	return nil
}

// Close closes the repository if the App opened it.
func (a *App) Close() error {
	if a.repo == nil || !a.ownRepo {
		return nil
	}
	err := a.repo.Close()
	a.repo = nil
	return err
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

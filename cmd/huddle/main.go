// Command huddle collects availability for group meetings and shows where
// it overlaps.
package main

import (
	"fmt"
	"os"

	"github.com/javiermolinar/huddle/internal/config"
	"github.com/javiermolinar/huddle/internal/ui"
)

// configEnv overrides the config file location.
const configEnv = "HUDDLE_CONFIG"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	path := os.Getenv(configEnv)
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", path, err)
	}
	if !ui.IsTerminal(os.Stdout) {
		ui.DisableColor()
	}

	app := ui.NewApp(nil, cfg)
	defer func() { _ = app.Close() }()
	return app.Execute()
}

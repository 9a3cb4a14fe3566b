package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/huddle/internal/config"
	"github.com/javiermolinar/huddle/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  huddle config
  huddle config --show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if show {
				printConfig(cmd.OutOrStdout(), a.config)
				return nil
			}
			return runConfigInteractive(cmd, config.DefaultConfigPath())
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "Print the effective configuration and exit")
	return cmd
}

func runConfigInteractive(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Check if file exists
	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	printConfig(out, cfg)

	reader := bufio.NewReader(cmd.InOrStdin())
	if !promptBool(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Poll.Name = promptValue(reader, out, "Your name", cfg.Poll.Name)
	cfg.Poll.DayStart = promptValue(reader, out, "Default day start", cfg.Poll.DayStart)
	cfg.Poll.DayEnd = promptValue(reader, out, "Default day end", cfg.Poll.DayEnd)
	cfg.Poll.WindowDays = promptInt(reader, out, "Default window length in days", cfg.Poll.WindowDays)
	cfg.Poll.TimeZone = promptValue(reader, out, "Time zone (empty for local)", cfg.Poll.TimeZone)
	cfg.Poll.MinWeight = promptInt(reader, out, "Minimum guests shown by heatmap/best", cfg.Poll.MinWeight)
	cfg.LLM.Provider = promptValue(reader, out, "LLM provider (ollama, openai, lmstudio)", cfg.LLM.Provider)
	cfg.LLM.Model = promptValue(reader, out, "LLM model", cfg.LLM.Model)
	cfg.LLM.BaseURL = promptValue(reader, out, "LLM base URL", cfg.LLM.BaseURL)
	cfg.Storage.DBPath = promptValue(reader, out, "Database path", cfg.Storage.DBPath)
	cfg.UI.Theme = promptTheme(reader, out, cfg.UI.Theme)

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[poll]")
	fmt.Fprintf(w, "  name        = %s\n", cfg.Poll.Name)
	fmt.Fprintf(w, "  day_start   = %s\n", cfg.Poll.DayStart)
	fmt.Fprintf(w, "  day_end     = %s\n", cfg.Poll.DayEnd)
	fmt.Fprintf(w, "  window_days = %d\n", cfg.Poll.WindowDays)
	fmt.Fprintf(w, "  time_zone   = %s\n", cfg.Poll.TimeZone)
	fmt.Fprintf(w, "  min_weight  = %d\n", cfg.Poll.MinWeight)
	fmt.Fprintln(w, "\n[llm]")
	fmt.Fprintf(w, "  provider    = %s\n", cfg.LLM.Provider)
	fmt.Fprintf(w, "  model       = %s\n", cfg.LLM.Model)
	fmt.Fprintf(w, "  base_url    = %s\n", cfg.LLM.BaseURL)
	if cfg.LLM.APIKey != "" {
		fmt.Fprintln(w, "  api_key     = (set)")
	}
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  db_path     = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  theme       = %s\n", cfg.UI.Theme)
}

func promptBool(reader *bufio.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, w io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(w, "  %s: ", label)
	} else {
		fmt.Fprintf(w, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(reader *bufio.Reader, w io.Writer, label string, current int) int {
	for {
		value := promptValue(reader, w, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil && n > 0 {
			return n
		}
		fmt.Fprintf(w, "  Invalid number %q\n", value)
		if _, err := reader.Peek(1); err != nil {
			return current
		}
	}
}

func promptTheme(reader *bufio.Reader, w io.Writer, current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(promptValue(reader, w, label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Fprintf(w, "  Invalid theme %q. Available: %s\n", value, options)
		if _, err := reader.Peek(1); err != nil {
			return current
		}
	}
}

package ui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/huddle/internal/export"
	"github.com/javiermolinar/huddle/internal/grid"
	"github.com/javiermolinar/huddle/internal/llm"
	"github.com/javiermolinar/huddle/internal/poll"
	"github.com/javiermolinar/huddle/internal/tui"
)

// clipboardWrite is swapped in tests.
var clipboardWrite = clipboard.WriteAll

func (a *App) heatmapCmd() *cobra.Command {
	var (
		minWeight int
		format    string
		copyOut   bool
	)

	cmd := &cobra.Command{
		Use:   "heatmap <poll>",
		Short: "Show how many guests are free at each time",
		Long: `Show every range where at least --min guests are free, in time order,
with who they are. Other formats print machine-readable slot lists.`,
		Example: `  huddle heatmap 3f2a
  huddle heatmap 3f2a --min 3
  huddle heatmap 3f2a --format json --copy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			data, err := a.loadPoll(context.Background(), args[0])
			if err != nil {
				return err
			}
			slots, err := data.aggregate()
			if err != nil {
				return err
			}
			slots = atLeast(slots, minWeight)

			return a.writeSlots(cmd.OutOrStdout(), data, slots, format, copyOut, "No guest is free yet.")
		},
	}

	cmd.Flags().IntVar(&minWeight, "min", a.config.Poll.MinWeight, "Only show ranges with at least this many guests")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatText), "Output format: text, json, yaml, ics")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the output to the clipboard")
	return cmd
}

func (a *App) bestCmd() *cobra.Command {
	var (
		minWeight int
		limit     int
		length    time.Duration
		format    string
	)

	cmd := &cobra.Command{
		Use:   "best <poll>",
		Short: "List the best meeting times",
		Long: `List ranges ordered by how many guests are free, then by length, then
by start time.`,
		Example: `  huddle best 3f2a
  huddle best 3f2a --length 1h --limit 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			data, err := a.loadPoll(context.Background(), args[0])
			if err != nil {
				return err
			}
			slots, err := data.aggregate()
			if err != nil {
				return err
			}

			ranked := poll.Rank(slots, minWeight)
			ranked = longerThan(ranked, length)
			if limit > 0 && len(ranked) > limit {
				ranked = ranked[:limit]
			}

			return a.writeSlots(cmd.OutOrStdout(), data, ranked, format, false, "No range matches.")
		},
	}

	cmd.Flags().IntVar(&minWeight, "min", a.config.Poll.MinWeight, "Only show ranges with at least this many guests")
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Number of ranges to show (0 = all)")
	cmd.Flags().DurationVar(&length, "length", 0, "Only show ranges at least this long, e.g. 45m")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatText), "Output format: text, json, yaml, ics")
	return cmd
}

func (a *App) exportCmd() *cobra.Command {
	var (
		minWeight int
		format    string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "export <poll>",
		Short: "Export the overlap of a poll",
		Example: `  huddle export 3f2a --format ics --output team-sync.ics
  huddle export 3f2a --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			data, err := a.loadPoll(context.Background(), args[0])
			if err != nil {
				return err
			}
			slots, err := data.aggregate()
			if err != nil {
				return err
			}
			slots = atLeast(slots, minWeight)

			if output == "" || output == "-" {
				return export.Write(cmd.OutOrStdout(), f, data.poll, slots, a.now())
			}

			path, err := resolvePath(output)
			if err != nil {
				return err
			}
			file, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := export.Write(file, f, data.poll, slots, a.now()); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d ranges to %s\n", len(slots), path)
			return nil
		},
	}

	cmd.Flags().IntVar(&minWeight, "min", a.config.Poll.MinWeight, "Only export ranges with at least this many guests")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatICS), "Output format: text, json, yaml, ics")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func (a *App) suggestCmd() *cobra.Command {
	var length time.Duration

	cmd := &cobra.Command{
		Use:   "suggest <poll>",
		Short: "Ask the configured LLM to pick a meeting time",
		Long: `Send the best ranges of a poll to the LLM configured in [llm] and print
its pick with a short reason. The pick is checked against the ranges.`,
		Example: `  huddle suggest 3f2a
  huddle suggest 3f2a --length 1h`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			ctx := context.Background()
			data, err := a.loadPoll(ctx, args[0])
			if err != nil {
				return err
			}
			slots, err := data.aggregate()
			if err != nil {
				return err
			}

			client, err := llm.NewClient(a.config.LLM.Provider, a.config.LLM.Model, a.config.LLM.BaseURL, a.config.LLM.APIKey)
			if err != nil {
				return fmt.Errorf("creating LLM client: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Asking %s (%s)...\n", a.config.LLM.Model, a.config.LLM.Provider)

			ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			defer cancel()
			s, err := llm.NewAdvisor(client).Suggest(ctx, data.poll, data.guests, poll.Rank(slots, 1), length)
			if err != nil {
				return err
			}

			printSuggestion(out, s, len(data.guests))
			return nil
		},
	}

	cmd.Flags().DurationVar(&length, "length", 30*time.Minute, "Meeting length")
	return cmd
}

func (a *App) editCmd() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "edit <poll>",
		Short: "Paint your availability with the mouse",
		Long: `Open the availability editor.

Columns are the dates of the poll, rows are 15-minute steps of the daily
band and shading shows how many other guests are free. Drag over empty
cells to add time, drag from one of your cells to remove time. Press s to
save and ? for all keys.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			name := as
			if name == "" {
				name = a.config.Poll.Name
			}
			if name == "" {
				return ErrNoName
			}
			return tui.Run(a.repo, a.config, args[0], name, a.debug)
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Guest name (default: config name)")
	return cmd
}

// writeSlots prints slots in the requested format, optionally also copying
// them to the clipboard.
func (a *App) writeSlots(w io.Writer, data *pollData, slots []grid.Slot, format string, copyOut bool, empty string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}

	if f == export.FormatText {
		if len(slots) == 0 {
			fmt.Fprintln(w, empty)
		} else {
			fmt.Fprintf(w, "%s  %s\n\n", formatHeader(data.poll.Title), formatMuted(fmt.Sprintf("%d guests", len(data.guests))))
			printSlots(w, slots, SlotOpts{Total: len(data.guests), ShowNames: true})
		}
	} else if err := export.Write(w, f, data.poll, slots, a.now()); err != nil {
		return err
	}

	if !copyOut {
		return nil
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, f, data.poll, slots, a.now()); err != nil {
		return err
	}
	if err := clipboardWrite(buf.String()); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	fmt.Fprintln(w, formatMuted("Copied to clipboard."))
	return nil
}

func printSuggestion(w io.Writer, s llm.Suggestion, total int) {
	fmt.Fprintf(w, "\n%s %s-%s  %s\n",
		formatHeader(s.From.Format("Mon Jan 2")),
		s.From.Format("15:04"), s.To.Format("15:04"),
		formatWeight(fmt.Sprintf("%d/%d free", s.Weight, total), s.Weight, total),
	)
	if s.Reason != "" {
		fmt.Fprintln(w)
		wrapAndPrint(w, s.Reason, "  ", min(termWidth(), 80))
	}
}

func atLeast(slots []grid.Slot, minWeight int) []grid.Slot {
	out := make([]grid.Slot, 0, len(slots))
	for _, s := range slots {
		if s.Weight >= minWeight {
			out = append(out, s)
		}
	}
	return out
}

func longerThan(slots []grid.Slot, length time.Duration) []grid.Slot {
	if length <= 0 {
		return slots
	}
	out := make([]grid.Slot, 0, len(slots))
	for _, s := range slots {
		if s.Duration() >= length {
			out = append(out, s)
		}
	}
	return out
}

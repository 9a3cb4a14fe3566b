package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/huddle/internal/dateutil"
	"github.com/javiermolinar/huddle/internal/ics"
	"github.com/javiermolinar/huddle/internal/poll"
)

// Availability errors.
var (
	ErrNoName         = errors.New("no guest name: pass --as or set name in the [poll] config section")
	ErrOutsideWindow  = errors.New("date is outside the poll window")
	ErrInvalidRange   = errors.New("range must be HH:MM-HH:MM with start before end")
	ErrNothingToApply = errors.New("no ranges given")
)

func (a *App) availCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "avail",
		Aliases: []string{"availability"},
		Short:   "Manage your availability for a poll",
		Long: `Add, import and clear the times you are free for a poll.

Every subcommand acts for the guest named by --as, or the configured
[poll] name. Use 'huddle edit' to paint availability with the mouse.`,
	}

	cmd.AddCommand(a.availSetCmd())
	cmd.AddCommand(a.availImportCmd())
	cmd.AddCommand(a.availRecurCmd())
	cmd.AddCommand(a.availClearCmd())
	cmd.AddCommand(a.availShowCmd())
	return cmd
}

func (a *App) availSetCmd() *cobra.Command {
	var (
		as     string
		remove bool
	)

	cmd := &cobra.Command{
		Use:   "set <poll> <date> <HH:MM-HH:MM>...",
		Short: "Mark ranges of one date as free (or busy with --remove)",
		Example: `  huddle avail set 3f2a 2025-03-03 09:00-12:00 14:00-17:30
  huddle avail set 3f2a 2025-03-04 10:00-11:00 --remove`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			ctx := context.Background()
			data, guest, err := a.loadForGuest(ctx, args[0], as)
			if err != nil {
				return err
			}

			ranges, err := dateRanges(data.poll, args[1], args[2:], guest)
			if err != nil {
				return err
			}

			var saved []poll.Interval
			if remove {
				saved, err = a.editOwn(ctx, data, guest, nil, ranges)
			} else {
				saved, err = a.editOwn(ctx, data, guest, ranges, nil)
			}
			if err != nil {
				return err
			}

			printOwn(cmd.OutOrStdout(), guest, saved)
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Guest name (default: config name)")
	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the ranges instead of adding them")
	return cmd
}

func (a *App) availImportCmd() *cobra.Command {
	var (
		as      string
		busy    bool
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "import <poll> <file.ics|->",
		Short: "Import availability from an iCalendar file",
		Long: `Import events from an iCalendar (.ics) file.

By default every event is a time you are free. With --busy the events are
meetings you already have: you are marked free for the rest of the daily
band and your previous availability is replaced. Recurring events are
expanded inside the poll window. Pass - to read from stdin.`,
		Example: `  huddle avail import 3f2a free.ics
  huddle avail import 3f2a ~/calendar.ics --busy`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			ctx := context.Background()
			data, guest, err := a.loadForGuest(ctx, args[0], as)
			if err != nil {
				return err
			}
			loc, err := data.poll.Location()
			if err != nil {
				return err
			}

			r, closeFn, err := openInput(cmd, args[1])
			if err != nil {
				return err
			}
			defer closeFn()

			events, err := ics.Import(r, ics.ImportOptions{
				Owner:       guest,
				Location:    loc,
				WindowStart: data.poll.Start(),
				WindowEnd:   data.poll.End(),
			})
			if err != nil {
				return err
			}

			var saved []poll.Interval
			switch {
			case busy:
				free, err := poll.FreeIn(data.poll, events, guest)
				if err != nil {
					return err
				}
				saved, err = a.replaceOwn(ctx, data, guest, free)
				if err != nil {
					return err
				}
			case replace:
				saved, err = a.replaceOwn(ctx, data, guest, events)
			default:
				saved, err = a.editOwn(ctx, data, guest, events, nil)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Read %d events from %s\n", len(events), args[1])
			printOwn(cmd.OutOrStdout(), guest, saved)
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Guest name (default: config name)")
	cmd.Flags().BoolVar(&busy, "busy", false, "Events are busy times; mark the rest of the band free")
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace instead of adding to existing availability")
	return cmd
}

func (a *App) availRecurCmd() *cobra.Command {
	var (
		as   string
		rule string
		from string
		to   string
	)

	cmd := &cobra.Command{
		Use:   "recur <poll>",
		Short: "Add availability from a recurrence rule",
		Long: `Add one range per occurrence of an RFC 5545 recurrence rule.

The rule starts on the first date of the poll window and every occurrence
spans --from to --to on its date.`,
		Example: `  huddle avail recur 3f2a --rule "FREQ=WEEKLY;BYDAY=MO,WE,FR" --from 09:00 --to 12:00
  huddle avail recur 3f2a --rule "FREQ=DAILY;INTERVAL=2" --from 14:00 --to 16:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			ctx := context.Background()
			data, guest, err := a.loadForGuest(ctx, args[0], as)
			if err != nil {
				return err
			}

			ranges, err := ics.Recurring(data.poll, guest, rule, from, to)
			if err != nil {
				return err
			}
			if len(ranges) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "The rule has no occurrences inside the poll window.")
				return nil
			}

			saved, err := a.editOwn(ctx, data, guest, ranges, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d occurrences\n", len(ranges))
			printOwn(cmd.OutOrStdout(), guest, saved)
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Guest name (default: config name)")
	cmd.Flags().StringVar(&rule, "rule", "", "Recurrence rule, e.g. FREQ=WEEKLY;BYDAY=MO,WE")
	cmd.Flags().StringVar(&from, "from", "", "Start of each occurrence (HH:MM)")
	cmd.Flags().StringVar(&to, "to", "", "End of each occurrence (HH:MM)")
	_ = cmd.MarkFlagRequired("rule")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (a *App) availClearCmd() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "clear <poll>",
		Short: "Remove all of your availability for a poll",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			ctx := context.Background()
			data, guest, err := a.loadForGuest(ctx, args[0], as)
			if err != nil {
				return err
			}
			if err := a.repo.ReplaceAvailability(ctx, data.poll.ID, guest, nil); err != nil {
				return fmt.Errorf("clearing availability: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared availability of %s\n", guest.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Guest name (default: config name)")
	return cmd
}

func (a *App) availShowCmd() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "show <poll>",
		Short: "Show your availability for a poll",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			data, guest, err := a.loadForGuest(context.Background(), args[0], as)
			if err != nil {
				return err
			}
			printOwn(cmd.OutOrStdout(), guest, ownOf(data.intervals, guest))
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Guest name (default: config name)")
	return cmd
}

// loadForGuest loads a poll and joins it as the named guest.
func (a *App) loadForGuest(ctx context.Context, pollID, as string) (*pollData, *poll.Guest, error) {
	name := strings.TrimSpace(as)
	if name == "" {
		name = a.config.Poll.Name
	}
	if name == "" {
		return nil, nil, ErrNoName
	}

	p, err := a.repo.GetPoll(ctx, pollID)
	if err != nil {
		return nil, nil, err
	}
	guest, err := a.repo.UpsertGuest(ctx, p.ID, name)
	if err != nil {
		return nil, nil, fmt.Errorf("joining poll: %w", err)
	}
	data, err := a.loadPoll(ctx, p.ID)
	if err != nil {
		return nil, nil, err
	}
	return data, guest, nil
}

// editOwn applies add then remove to the guest's stored availability and
// saves the result. Ranges are snapped to 15-minute cells and clipped to
// the window.
func (a *App) editOwn(ctx context.Context, data *pollData, guest *poll.Guest, add, remove []poll.Interval) ([]poll.Interval, error) {
	if len(add) == 0 && len(remove) == 0 {
		return nil, ErrNothingToApply
	}

	own, err := poll.BuildOwn(data.poll, append(ownOf(data.intervals, guest), add...))
	if err != nil {
		return nil, err
	}
	for _, iv := range remove {
		from, to := iv.From, iv.To
		if !from.Before(data.poll.End()) || !to.After(data.poll.Start()) {
			continue
		}
		from = latest(from, data.poll.Start())
		to = earliest(to, data.poll.End())
		if err := own.SetRange(from, to, 0); err != nil {
			return nil, fmt.Errorf("removing range: %w", err)
		}
	}

	return a.save(ctx, data, guest, poll.IntervalsFromSlots(own.ExtractSlots(), guest))
}

// replaceOwn stores intervals as the guest's whole availability.
func (a *App) replaceOwn(ctx context.Context, data *pollData, guest *poll.Guest, intervals []poll.Interval) ([]poll.Interval, error) {
	own, err := poll.BuildOwn(data.poll, intervals)
	if err != nil {
		return nil, err
	}
	return a.save(ctx, data, guest, poll.IntervalsFromSlots(own.ExtractSlots(), guest))
}

func (a *App) save(ctx context.Context, data *pollData, guest *poll.Guest, intervals []poll.Interval) ([]poll.Interval, error) {
	if err := a.repo.ReplaceAvailability(ctx, data.poll.ID, guest, intervals); err != nil {
		return nil, fmt.Errorf("saving availability: %w", err)
	}
	return intervals, nil
}

// ownOf filters the intervals owned by guest.
func ownOf(intervals []poll.Interval, guest *poll.Guest) []poll.Interval {
	var out []poll.Interval
	for _, iv := range intervals {
		if iv.OwnerID == guest.ID {
			out = append(out, iv)
		}
	}
	return out
}

// dateRanges parses "HH:MM-HH:MM" ranges on one window date.
func dateRanges(p *poll.Poll, date string, ranges []string, owner *poll.Guest) ([]poll.Interval, error) {
	loc, err := p.Location()
	if err != nil {
		return nil, err
	}
	day, err := dateutil.ParseDate(date, loc)
	if err != nil {
		return nil, err
	}
	if day.Before(p.WindowStart) || day.After(p.WindowEnd) {
		return nil, fmt.Errorf("%w: %s not in %s - %s", ErrOutsideWindow, date,
			p.WindowStart.Format(dateutil.DateLayout), p.WindowEnd.Format(dateutil.DateLayout))
	}

	out := make([]poll.Interval, 0, len(ranges))
	for _, r := range ranges {
		from, to, err := parseClockRange(r)
		if err != nil {
			return nil, err
		}
		out = append(out, poll.Interval{
			From:      dateutil.At(day, from),
			To:        dateutil.At(day, to),
			OwnerID:   owner.ID,
			OwnerName: owner.Name,
		})
	}
	return out, nil
}

// parseClockRange parses "HH:MM-HH:MM" into minutes since midnight.
func parseClockRange(s string) (from, to int, err error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: got %q", ErrInvalidRange, s)
	}
	if from, err = dateutil.ParseClock(start); err != nil {
		return 0, 0, err
	}
	if to, err = dateutil.ParseClock(end); err != nil {
		return 0, 0, err
	}
	if from >= to {
		return 0, 0, fmt.Errorf("%w: got %q", ErrInvalidRange, s)
	}
	return from, to, nil
}

// printOwn lists a guest's saved ranges.
func printOwn(w io.Writer, guest *poll.Guest, intervals []poll.Interval) {
	if len(intervals) == 0 {
		fmt.Fprintf(w, "%s has no availability.\n", guest.Name)
		return
	}

	total := 0
	fmt.Fprintf(w, "%s is free:\n", formatHeader(guest.Name))
	for _, iv := range intervals {
		minutes := int(iv.Duration().Minutes())
		total += minutes
		fmt.Fprintf(w, "  %s %s-%s  %s\n",
			iv.From.Format("Mon Jan 2"),
			formatAccent(iv.From.Format("15:04")),
			formatAccent(iv.To.Format("15:04")),
			formatMuted(FormatDuration(minutes)),
		)
	}
	fmt.Fprintf(w, "Total: %s in %d ranges\n", FormatDuration(total), len(intervals))
}

// openInput opens path, or stdin for "-".
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(resolved)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

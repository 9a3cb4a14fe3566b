package ui

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/huddle/internal/dateutil"
	"github.com/javiermolinar/huddle/internal/grid"
	"github.com/javiermolinar/huddle/internal/poll"
)

func (a *App) pollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Create, list, show and delete polls",
	}
	cmd.AddCommand(a.pollCreateCmd())
	cmd.AddCommand(a.pollListCmd())
	cmd.AddCommand(a.pollShowCmd())
	cmd.AddCommand(a.pollDeleteCmd())
	return cmd
}

func (a *App) pollCreateCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		dayStart  string
		dayEnd    string
		timeZone  string
		host      string
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a poll over a range of dates",
		Long: `Create a meeting poll.

The window covers every date from --start to --end inclusive. Guests can
only mark times inside the daily --day-start/--day-end band. Defaults come
from the [poll] section of the config.`,
		Example: `  huddle poll create "Team sync"
  huddle poll create "Planning" --start=monday --end=friday --day-start=10:00 --day-end=16:00
  huddle poll create "Offsite" --start=2025-03-03 --end=2025-03-07 --tz=Europe/Madrid`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			loc, err := a.location(timeZone)
			if err != nil {
				return err
			}
			now := a.now().In(loc)

			if endDate == "" {
				start, err := dateutil.ParseRelativeDate(startDate, now)
				if err != nil {
					return fmt.Errorf("start: %w", err)
				}
				endDate = start.AddDate(0, 0, a.config.Poll.WindowDays-1).Format(dateutil.DateLayout)
			}
			window, err := dateutil.NewDateRange(startDate, endDate, now, loc)
			if err != nil {
				return err
			}

			if host == "" {
				host = a.config.Poll.Name
			}
			p, err := poll.New(args[0], host, window, dayStart, dayEnd, now)
			if err != nil {
				return err
			}
			if err := a.repo.CreatePoll(context.Background(), p); err != nil {
				return fmt.Errorf("creating poll: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created poll %s\n\n", formatAccent(p.ID))
			printPoll(out, p, nil, a.now())
			fmt.Fprintf(out, "\nMark your availability with: huddle edit %s\n", shortID(p.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "First date (YYYY-MM-DD, today, tomorrow, monday, next-monday...)")
	cmd.Flags().StringVar(&endDate, "end", "", "Last date, inclusive (default: start + window_days - 1)")
	cmd.Flags().StringVar(&dayStart, "day-start", a.config.Poll.DayStart, "Daily band start (HH:MM)")
	cmd.Flags().StringVar(&dayEnd, "day-end", a.config.Poll.DayEnd, "Daily band end (HH:MM)")
	cmd.Flags().StringVar(&timeZone, "tz", a.config.Poll.TimeZone, "IANA time zone of the poll (default: local)")
	cmd.Flags().StringVar(&host, "host", "", "Host name (default: config name)")
	return cmd
}

func (a *App) pollListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List polls",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			ctx := context.Background()
			polls, err := a.repo.ListPolls(ctx)
			if err != nil {
				return fmt.Errorf("listing polls: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(polls) == 0 {
				fmt.Fprintln(out, "No polls yet. Create one with: huddle poll create <title>")
				return nil
			}

			for _, p := range polls {
				guests, err := a.repo.ListGuests(ctx, p.ID)
				if err != nil {
					return fmt.Errorf("listing guests: %w", err)
				}
				fmt.Fprintf(out, "%s  %-24s  %s - %s  %s-%s  %s\n",
					formatAccent(shortID(p.ID)),
					truncate(p.Title, 24),
					p.WindowStart.Format("Jan 02"),
					p.WindowEnd.Format("Jan 02"),
					p.DayStart, p.DayEnd,
					formatMuted(fmt.Sprintf("%d guests", len(guests))),
				)
			}
			return nil
		},
	}
}

func (a *App) pollShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <poll>",
		Short: "Show a poll, its guests and who is free when",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			data, err := a.loadPoll(context.Background(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printPoll(out, data.poll, data.guests, a.now())

			slots, err := data.aggregate()
			if err != nil {
				return err
			}
			full := poll.Full(slots, len(data.guests))
			fmt.Fprintln(out)
			if len(full) == 0 {
				fmt.Fprintln(out, formatMuted("No time works for everyone yet."))
				return nil
			}
			fmt.Fprintln(out, formatHeader("Everyone is free:"))
			printSlots(out, full, SlotOpts{Total: len(data.guests)})
			return nil
		},
	}
}

func (a *App) pollDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <poll>",
		Aliases: []string{"rm"},
		Short:   "Delete a poll with all its availability",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			ctx := context.Background()
			p, err := a.repo.GetPoll(ctx, args[0])
			if err != nil {
				return err
			}

			if !yes && !promptBool(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), fmt.Sprintf("Delete poll %q (%s)?", p.Title, shortID(p.ID))) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			if err := a.repo.DeletePoll(ctx, p.ID); err != nil {
				return fmt.Errorf("deleting poll: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted poll %q\n", p.Title)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// pollData is a poll with everything stored for it.
type pollData struct {
	poll      *poll.Poll
	guests    []*poll.Guest
	intervals []poll.Interval
}

func (a *App) loadPoll(ctx context.Context, id string) (*pollData, error) {
	p, err := a.repo.GetPoll(ctx, id)
	if err != nil {
		return nil, err
	}
	guests, err := a.repo.ListGuests(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("listing guests: %w", err)
	}
	intervals, err := a.repo.ListAvailability(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("listing availability: %w", err)
	}
	return &pollData{poll: p, guests: guests, intervals: intervals}, nil
}

// aggregate returns every guest's overlap inside the daily band.
func (d *pollData) aggregate() ([]grid.Slot, error) {
	g, err := poll.BuildAggregate(d.poll, d.intervals, "")
	if err != nil {
		return nil, err
	}
	return d.poll.ClipSlots(g.ExtractSlots()), nil
}

// location resolves a --tz flag, falling back to the configured zone.
func (a *App) location(name string) (*time.Location, error) {
	if name == "" {
		return a.config.Location()
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", poll.ErrUnknownTimeZone, name)
	}
	return loc, nil
}

// shortID is the first block of a poll UUID; any unique prefix resolves.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/huddle/internal/db"
	"github.com/javiermolinar/huddle/internal/poll"
)

func (a *App) mergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <database_path>",
		Short: "Merge polls and availability from another database",
		Long: `Merge polls from another huddle database into the current one.

Polls missing here are copied whole. For polls both databases share, a
guest's availability is taken from the source when the guest is new here
or was updated more recently in the source.

Example:
  huddle merge ~/Downloads/team.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			sourcePath, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			destPath, err := resolvePath(a.config.Storage.DBPath)
			if err != nil {
				return err
			}

			if sourcePath == destPath {
				return fmt.Errorf("source database matches current database")
			}

			info, err := os.Stat(sourcePath)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("source database does not exist: %s", sourcePath)
				}
				return fmt.Errorf("checking source database: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("source database path is a directory: %s", sourcePath)
			}

			res, err := mergeDatabase(cmd.Context(), a.repo, sourcePath)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Merged %d new polls and %d guests from %s\n", res.Polls, res.Guests, sourcePath)
			return nil
		},
	}

	return cmd
}

// mergeResult counts what a merge changed.
type mergeResult struct {
	Polls  int
	Guests int
}

func mergeDatabase(ctx context.Context, dest poll.Repository, sourcePath string) (mergeResult, error) {
	source, err := db.New(sourcePath)
	if err != nil {
		return mergeResult{}, fmt.Errorf("opening source database: %w", err)
	}
	defer func() { _ = source.Close() }()

	return mergePolls(ctx, dest, source)
}

func mergePolls(ctx context.Context, dest, source poll.Repository) (mergeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var res mergeResult

	polls, err := source.ListPolls(ctx)
	if err != nil {
		return res, fmt.Errorf("listing source polls: %w", err)
	}

	for _, p := range polls {
		existing, err := dest.GetPoll(ctx, p.ID)
		switch {
		case errors.Is(err, poll.ErrPollNotFound):
			if err := dest.CreatePoll(ctx, p); err != nil {
				return res, fmt.Errorf("copying poll %q: %w", p.Title, err)
			}
			res.Polls++
		case err != nil:
			return res, fmt.Errorf("looking up poll %q: %w", p.Title, err)
		case existing.ID != p.ID:
			return res, fmt.Errorf("looking up poll %q: %w", p.Title, poll.ErrPollNotFound)
		}

		n, err := mergeGuests(ctx, dest, source, p.ID)
		if err != nil {
			return res, fmt.Errorf("merging poll %q: %w", p.Title, err)
		}
		res.Guests += n
	}
	return res, nil
}

// mergeGuests copies the availability of source guests that are missing in
// dest or were updated later in source. It returns the number copied.
func mergeGuests(ctx context.Context, dest, source poll.Repository, pollID string) (int, error) {
	srcGuests, err := source.ListGuests(ctx, pollID)
	if err != nil {
		return 0, fmt.Errorf("listing source guests: %w", err)
	}
	if len(srcGuests) == 0 {
		return 0, nil
	}

	dstGuests, err := dest.ListGuests(ctx, pollID)
	if err != nil {
		return 0, fmt.Errorf("listing guests: %w", err)
	}
	known := make(map[string]*poll.Guest, len(dstGuests))
	for _, g := range dstGuests {
		known[g.Name] = g
	}

	intervals, err := source.ListAvailability(ctx, pollID)
	if err != nil {
		return 0, fmt.Errorf("listing source availability: %w", err)
	}
	byOwner := make(map[string][]poll.Interval)
	for _, iv := range intervals {
		byOwner[iv.OwnerID] = append(byOwner[iv.OwnerID], iv)
	}

	copied := 0
	for _, sg := range srcGuests {
		if dg, ok := known[sg.Name]; ok && !sg.UpdatedAt.After(dg.UpdatedAt) {
			continue
		}

		dg, err := dest.UpsertGuest(ctx, pollID, sg.Name)
		if err != nil {
			return copied, fmt.Errorf("adding guest %q: %w", sg.Name, err)
		}
		own := make([]poll.Interval, 0, len(byOwner[sg.ID]))
		for _, iv := range byOwner[sg.ID] {
			iv.OwnerID, iv.OwnerName = dg.ID, dg.Name
			own = append(own, iv)
		}
		if err := dest.ReplaceAvailability(ctx, pollID, dg, own); err != nil {
			return copied, fmt.Errorf("copying %s's availability: %w", sg.Name, err)
		}
		copied++
	}
	return copied, nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}

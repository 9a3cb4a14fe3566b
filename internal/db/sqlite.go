// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/huddle/internal/dateutil"
	"github.com/javiermolinar/huddle/internal/poll"
)

// SQLite implements poll.Repository using SQLite.
type SQLite struct {
	db *sql.DB
}

var _ poll.Repository = (*SQLite)(nil)

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// dsn enables foreign keys on every pooled connection.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ============================================================================
// Polls
// ============================================================================

// CreatePoll stores a new poll.
func (s *SQLite) CreatePoll(ctx context.Context, p *poll.Poll) error {
	query := `
		INSERT INTO polls (
			id, title, host, window_start, window_end, day_start, day_end, time_zone, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID,
		p.Title,
		p.Host,
		p.WindowStart.Format(dateutil.DateLayout),
		p.WindowEnd.Format(dateutil.DateLayout),
		p.DayStart,
		p.DayEnd,
		p.TimeZone,
		formatInstant(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting poll: %w", err)
	}
	return nil
}

const pollColumns = `id, title, host, window_start, window_end, day_start, day_end, time_zone, created_at`

// GetPoll retrieves a poll by ID or unique ID prefix.
func (s *SQLite) GetPoll(ctx context.Context, id string) (*poll.Poll, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, poll.ErrPollNotFound
	}

	query := `SELECT ` + pollColumns + ` FROM polls WHERE id = ? OR id LIKE ? ORDER BY id = ? DESC LIMIT 2`
	rows, err := s.db.QueryContext(ctx, query, id, escapeLike(id)+"%", id)
	if err != nil {
		return nil, fmt.Errorf("querying poll: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var found []*poll.Poll
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating polls: %w", err)
	}

	switch {
	case len(found) == 0:
		return nil, fmt.Errorf("%w: %s", poll.ErrPollNotFound, id)
	case found[0].ID == id || len(found) == 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", poll.ErrAmbiguousID, id)
	}
}

// ListPolls returns all polls, newest first.
func (s *SQLite) ListPolls(ctx context.Context) ([]*poll.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying polls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var polls []*poll.Poll
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			return nil, err
		}
		polls = append(polls, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating polls: %w", err)
	}
	return polls, nil
}

// DeletePoll removes a poll with its guests and intervals.
func (s *SQLite) DeletePoll(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM intervals WHERE poll_id = ?`,
		`DELETE FROM guests WHERE poll_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("deleting poll data: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM polls WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting poll: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", poll.ErrPollNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ============================================================================
// Guests
// ============================================================================

// UpsertGuest returns the named guest of a poll, creating it if needed.
func (s *SQLite) UpsertGuest(ctx context.Context, pollID, name string) (*poll.Guest, error) {
	p, err := s.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	pollID = p.ID

	g, err := s.getGuestByName(ctx, pollID, name)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, poll.ErrGuestNotFound) {
		return nil, err
	}

	g, err = poll.NewGuest(pollID, name, time.Now())
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO guests (id, poll_id, name, updated_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, g.ID, g.PollID, g.Name, formatInstant(g.UpdatedAt)); err != nil {
		return nil, fmt.Errorf("inserting guest: %w", err)
	}
	return g, nil
}

func (s *SQLite) getGuestByName(ctx context.Context, pollID, name string) (*poll.Guest, error) {
	query := `SELECT id, poll_id, name, updated_at FROM guests WHERE poll_id = ? AND name = ?`

	var (
		g         poll.Guest
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, query, pollID, strings.TrimSpace(name)).Scan(&g.ID, &g.PollID, &g.Name, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, poll.ErrGuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying guest: %w", err)
	}

	g.UpdatedAt, err = parseInstant(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &g, nil
}

// ListGuests returns the guests of a poll ordered by name.
func (s *SQLite) ListGuests(ctx context.Context, pollID string) ([]*poll.Guest, error) {
	query := `SELECT id, poll_id, name, updated_at FROM guests WHERE poll_id = ? ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("querying guests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var guests []*poll.Guest
	for rows.Next() {
		var (
			g         poll.Guest
			updatedAt string
		)
		if err := rows.Scan(&g.ID, &g.PollID, &g.Name, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning guest: %w", err)
		}
		if g.UpdatedAt, err = parseInstant(updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		guests = append(guests, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating guests: %w", err)
	}
	return guests, nil
}

// ============================================================================
// Availability
// ============================================================================

// ReplaceAvailability atomically replaces every interval of a guest.
func (s *SQLite) ReplaceAvailability(ctx context.Context, pollID string, g *poll.Guest, intervals []poll.Interval) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM intervals WHERE poll_id = ? AND guest_id = ?`, pollID, g.ID); err != nil {
		return fmt.Errorf("deleting intervals: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO intervals (poll_id, guest_id, starts_at, ends_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, iv := range intervals {
		if !iv.From.Before(iv.To) {
			continue
		}
		if _, err := stmt.ExecContext(ctx, pollID, g.ID, formatInstant(iv.From), formatInstant(iv.To)); err != nil {
			return fmt.Errorf("inserting interval: %w", err)
		}
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx, `UPDATE guests SET updated_at = ? WHERE id = ?`, formatInstant(now), g.ID); err != nil {
		return fmt.Errorf("touching guest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	g.UpdatedAt = now
	return nil
}

// ListAvailability returns all intervals of a poll ordered by start, in the
// poll's time zone.
func (s *SQLite) ListAvailability(ctx context.Context, pollID string) ([]poll.Interval, error) {
	p, err := s.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	loc := p.WindowStart.Location()

	query := `
		SELECT i.starts_at, i.ends_at, g.id, g.name
		FROM intervals i
		JOIN guests g ON g.id = i.guest_id
		WHERE i.poll_id = ?
		ORDER BY i.starts_at, g.name
	`
	rows, err := s.db.QueryContext(ctx, query, p.ID)
	if err != nil {
		return nil, fmt.Errorf("querying intervals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var intervals []poll.Interval
	for rows.Next() {
		var (
			iv       poll.Interval
			from, to string
		)
		if err := rows.Scan(&from, &to, &iv.OwnerID, &iv.OwnerName); err != nil {
			return nil, fmt.Errorf("scanning interval: %w", err)
		}
		if iv.From, err = parseInstant(from); err != nil {
			return nil, fmt.Errorf("parsing starts_at: %w", err)
		}
		if iv.To, err = parseInstant(to); err != nil {
			return nil, fmt.Errorf("parsing ends_at: %w", err)
		}
		iv.From, iv.To = iv.From.In(loc), iv.To.In(loc)
		intervals = append(intervals, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating intervals: %w", err)
	}
	return intervals, nil
}

// ============================================================================
// Helpers
// ============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanPoll(row scanner) (*poll.Poll, error) {
	var (
		p                      poll.Poll
		windowStart, windowEnd string
		createdAt              string
	)
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Host,
		&windowStart,
		&windowEnd,
		&p.DayStart,
		&p.DayEnd,
		&p.TimeZone,
		&createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning poll: %w", err)
	}

	loc, err := p.Location()
	if err != nil {
		return nil, err
	}
	if p.WindowStart, err = dateutil.ParseDate(windowStart, loc); err != nil {
		return nil, fmt.Errorf("parsing window_start: %w", err)
	}
	if p.WindowEnd, err = dateutil.ParseDate(windowEnd, loc); err != nil {
		return nil, fmt.Errorf("parsing window_end: %w", err)
	}
	if p.CreatedAt, err = parseInstant(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &p, nil
}

// Instants are stored in UTC so that string order matches time order.
func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseInstant(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`%`, ``, `_`, ``)
	return r.Replace(s)
}

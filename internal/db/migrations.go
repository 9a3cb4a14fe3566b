package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS polls (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			host         TEXT NOT NULL,
			window_start TEXT NOT NULL,
			window_end   TEXT NOT NULL,
			day_start    TEXT NOT NULL,
			day_end      TEXT NOT NULL,
			time_zone    TEXT NOT NULL,
			created_at   TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS guests (
			id         TEXT PRIMARY KEY,
			poll_id    TEXT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
			name       TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (poll_id, name)
		);

		CREATE TABLE IF NOT EXISTS intervals (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			poll_id   TEXT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
			guest_id  TEXT NOT NULL REFERENCES guests(id) ON DELETE CASCADE,
			starts_at TEXT NOT NULL,
			ends_at   TEXT NOT NULL,
			CHECK (starts_at < ends_at)
		);

		CREATE INDEX IF NOT EXISTS idx_intervals_poll ON intervals(poll_id, starts_at);
		CREATE INDEX IF NOT EXISTS idx_guests_poll ON guests(poll_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}

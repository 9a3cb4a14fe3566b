package poll

import "context"

// Repository defines the storage interface for polls and availability.
type Repository interface {
	// CreatePoll stores a new poll.
	CreatePoll(ctx context.Context, p *Poll) error

	// GetPoll retrieves a poll by ID or unique ID prefix.
	// Returns ErrPollNotFound if nothing matches.
	GetPoll(ctx context.Context, id string) (*Poll, error)

	// ListPolls returns all polls, newest first.
	ListPolls(ctx context.Context) ([]*Poll, error)

	// DeletePoll removes a poll with its guests and intervals.
	DeletePoll(ctx context.Context, id string) error

	// UpsertGuest returns the guest with the given name in the poll,
	// creating it if needed.
	UpsertGuest(ctx context.Context, pollID, name string) (*Guest, error)

	// ListGuests returns the guests of a poll ordered by name.
	ListGuests(ctx context.Context, pollID string) ([]*Guest, error)

	// ReplaceAvailability atomically replaces every interval of a guest.
	ReplaceAvailability(ctx context.Context, pollID string, g *Guest, intervals []Interval) error

	// ListAvailability returns all intervals of a poll ordered by start.
	ListAvailability(ctx context.Context, pollID string) ([]Interval, error)

	// Close releases any resources held by the repository.
	Close() error
}

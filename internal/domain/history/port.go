package history

import "context"

// Repository port (interface for persistence)
type Repository interface {
	// Append inserts one entry. Safe to call again with the same ID.
	Append(ctx context.Context, e *Entry) error
	// ListForUser returns the user's entries newest first. A user with
	// no entries gets an empty slice, not an error.
	ListForUser(ctx context.Context, userID string) ([]*Entry, error)
	// DeleteAllForUser removes every entry owned by the user in one
	// transaction: readers observe all entries or none.
	DeleteAllForUser(ctx context.Context, userID string) error
}

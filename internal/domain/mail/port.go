package mail

import "context"

// Sender port (interface for the transactional mail provider)
type Sender interface {
	SendWelcome(ctx context.Context, to string) error
}

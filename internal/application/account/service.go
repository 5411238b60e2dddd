package account

import (
	"context"
	"fmt"

	"github.com/voiceunleashed/fluency/internal/domain/history"
	"github.com/voiceunleashed/fluency/internal/domain/identity"
)

// Service implements the history-facing use cases: reading a user's
// feedback history and deleting an account together with everything
// it owns.
type Service struct {
	History history.Repository
	Ident   identity.Verifier
}

// ListHistory returns the user's entries newest first. No entries is
// an empty list, not an error.
func (s *Service) ListHistory(ctx context.Context, userID string) ([]*history.Entry, error) {
	entries, err := s.History.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if entries == nil {
		entries = []*history.Entry{}
	}
	return entries, nil
}

// DeleteAccount wipes the user's history, then removes the identity
// account. History goes first: if the identity deletion fails the
// user can retry, while the reverse order would strand orphaned
// entries with no owner able to remove them.
func (s *Service) DeleteAccount(ctx context.Context, userID, idToken string) error {
	if err := s.History.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if err := s.Ident.DeleteAccount(ctx, idToken); err != nil {
		return fmt.Errorf("delete identity account: %w", err)
	}
	return nil
}

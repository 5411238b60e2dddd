package account

import (
	"context"
	"errors"
	"testing"

	"github.com/voiceunleashed/fluency/internal/domain/history"
	"github.com/voiceunleashed/fluency/internal/domain/identity"
)

type fakeRepo struct {
	entries   []*history.Entry
	deleteErr error
	deleted   []string
}

func (f *fakeRepo) Append(ctx context.Context, e *history.Entry) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeRepo) ListForUser(ctx context.Context, userID string) ([]*history.Entry, error) {
	var out []*history.Entry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeVerifier struct {
	deleteErr     error
	deletedTokens []string
}

func (f *fakeVerifier) Verify(ctx context.Context, idToken string) (*identity.User, error) {
	return &identity.User{ID: "u1"}, nil
}

func (f *fakeVerifier) DeleteAccount(ctx context.Context, idToken string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedTokens = append(f.deletedTokens, idToken)
	return nil
}

func TestListHistoryEmptyIsNotError(t *testing.T) {
	svc := &Service{History: &fakeRepo{}, Ident: nil}

	entries, err := svc.ListHistory(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries == nil {
		t.Fatal("want empty slice, got nil")
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}

func TestDeleteAccount(t *testing.T) {
	repo := &fakeRepo{}
	ver := &fakeVerifier{}
	svc := &Service{History: repo, Ident: ver}

	if err := svc.DeleteAccount(context.Background(), "u1", "tok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "u1" {
		t.Errorf("history not wiped: %v", repo.deleted)
	}
	if len(ver.deletedTokens) != 1 || ver.deletedTokens[0] != "tok" {
		t.Errorf("identity account not removed: %v", ver.deletedTokens)
	}
}

func TestDeleteAccountHistoryFailureStopsEarly(t *testing.T) {
	repo := &fakeRepo{deleteErr: errors.New("db down")}
	ver := &fakeVerifier{}
	svc := &Service{History: repo, Ident: ver}

	if err := svc.DeleteAccount(context.Background(), "u1", "tok"); err == nil {
		t.Fatal("expected error")
	}
	// Identity must survive so the user can retry the deletion.
	if len(ver.deletedTokens) != 0 {
		t.Error("identity account removed despite history failure")
	}
}

func TestDeleteAccountIdentityFailurePropagates(t *testing.T) {
	repo := &fakeRepo{}
	ver := &fakeVerifier{deleteErr: errors.New("provider down")}
	svc := &Service{History: repo, Ident: ver}

	if err := svc.DeleteAccount(context.Background(), "u1", "tok"); err == nil {
		t.Fatal("expected error")
	}
}

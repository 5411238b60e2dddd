package identity

import (
	"context"
	"errors"
)

// ErrUnauthenticated indicates a missing, expired or invalid identity token.
var ErrUnauthenticated = errors.New("unauthenticated")

// User is the verified caller identity.
type User struct {
	ID    string
	Email string
}

// Verifier port (interface for the identity provider)
type Verifier interface {
	// Verify checks a bearer ID token and returns the owning user.
	// Fails closed: any provider error maps to ErrUnauthenticated.
	Verify(ctx context.Context, idToken string) (*User, error)
	// DeleteAccount removes the account owning the token.
	DeleteAccount(ctx context.Context, idToken string) error
}

package domain

import (
	"context"
	"time"
)

// User is the subset of a user account this service reads.
// swagger:model User
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// RecipientDirectory resolves user identifiers to contactable users.
// Unknown identifiers are omitted from the result.
type RecipientDirectory interface {
	ListByIDs(ctx context.Context, userIDs []string) ([]*User, error)
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

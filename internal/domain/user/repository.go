package user

import "context"

// Repository is the persistence surface for user rows.
type Repository interface {
	// GetByEmail returns the user registered under the email, or nil.
	GetByEmail(ctx context.Context, email string) (*Details, error)

	// GetByID returns the user by id, or nil.
	GetByID(ctx context.Context, id string) (*Details, error)
}

package user

import (
	"context"
)

// Repository defines storage operations for staff users.
type Repository interface {
	// Create creates a new user.
	// Returns ErrUserAlreadyExists if the email is taken.
	Create(ctx context.Context, u *User) error

	// GetByID returns a user by internal ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail returns a user by email.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update updates a user.
	Update(ctx context.Context, u *User) error
}

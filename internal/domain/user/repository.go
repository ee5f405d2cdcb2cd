package user

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned by GetByID when no user has the given id.
var ErrUserNotFound = errors.New("user not found")

// Repository defines the operations for persisting and retrieving users.
type Repository interface {
	GetAll(ctx context.Context) ([]*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	// Save inserts or updates the user.
	Save(ctx context.Context, u *User) error
}

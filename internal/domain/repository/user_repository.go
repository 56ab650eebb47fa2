package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/argentumhq/argentum/internal/domain/entity"
	"github.com/argentumhq/argentum/internal/domain/valueobject"
)

// ErrUserNotFound is returned by lookups when no user matches.
var ErrUserNotFound = errors.New("user not found")

// AlreadyExistsError reports a uniqueness conflict on email or username.
// The storage layer raises it from its unique indexes regardless of any
// pre-check the caller performed; that index is the authoritative guard
// against racing registrations.
type AlreadyExistsError struct {
	Field string // "email" or "username"
	Value string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("user with %s %q already exists", e.Field, e.Value)
}

// UserRepository defines persistence operations for User aggregates.
type UserRepository interface {
	// Save persists a new user. Returns *AlreadyExistsError when the
	// storage uniqueness constraint on email or username rejects the row.
	Save(ctx context.Context, u *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email valueobject.Email) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	// Update rewrites an existing user. Returns ErrUserNotFound when the id
	// is unknown and *AlreadyExistsError on uniqueness conflicts.
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
	ExistsByEmail(ctx context.Context, email valueobject.Email) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ListAll(ctx context.Context, skip, limit int) ([]*entity.User, error)
	Count(ctx context.Context) (int64, error)
}

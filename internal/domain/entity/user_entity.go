package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/argentumhq/argentum/internal/domain/valueobject"
)

// ErrInvalidUsername is returned when a username fails validation.
var ErrInvalidUsername = errors.New("invalid username")

const (
	usernameMinLength = 3
	usernameMaxLength = 50
)

// User is the aggregate root for the user domain.
// Passwords exist here only in hashed form; mutations go through the
// methods below so UpdatedAt always moves forward with the aggregate.
type User struct {
	ID             string
	Email          valueobject.Email
	Username       string
	HashedPassword valueobject.HashedPassword
	IsActive       bool
	IsVerified     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewUser creates a freshly registered user: active, unverified, with a
// generated id and identical creation/update timestamps.
func NewUser(email valueobject.Email, hashed valueobject.HashedPassword, username string) (*User, error) {
	name, err := validateUsername(username)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &User{
		ID:             uuid.NewString(),
		Email:          email,
		Username:       name,
		HashedPassword: hashed,
		IsActive:       true,
		IsVerified:     false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func validateUsername(username string) (string, error) {
	name := strings.TrimSpace(username)
	if len(name) < usernameMinLength {
		return "", fmt.Errorf("%w: must be at least %d characters", ErrInvalidUsername, usernameMinLength)
	}
	if len(name) > usernameMaxLength {
		return "", fmt.Errorf("%w: must be at most %d characters", ErrInvalidUsername, usernameMaxLength)
	}
	return name, nil
}

// UpdateEmail changes the email address and requires re-verification.
func (u *User) UpdateEmail(email valueobject.Email) {
	u.Email = email
	u.IsVerified = false
	u.touch()
}

func (u *User) UpdatePassword(hashed valueobject.HashedPassword) {
	u.HashedPassword = hashed
	u.touch()
}

func (u *User) UpdateUsername(username string) error {
	name, err := validateUsername(username)
	if err != nil {
		return err
	}
	u.Username = name
	u.touch()
	return nil
}

func (u *User) Activate() {
	u.IsActive = true
	u.touch()
}

func (u *User) Deactivate() {
	u.IsActive = false
	u.touch()
}

func (u *User) MarkVerified() {
	u.IsVerified = true
	u.touch()
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}

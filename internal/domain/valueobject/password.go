package valueobject

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPassword is returned when a plain password fails the length policy.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidHash is returned when a stored hash does not look like a bcrypt hash.
	ErrInvalidHash = errors.New("invalid hashed password")
)

const (
	passwordMinLength = 8
	passwordMaxLength = 128

	// bcrypt always produces a 60-character encoded hash.
	bcryptHashLength = 60
)

// PlainPassword holds a raw secret transiently during registration and login.
// It is never persisted and its String form never reveals the secret.
type PlainPassword struct {
	value string
}

func NewPlainPassword(raw string) (PlainPassword, error) {
	if len(raw) < passwordMinLength {
		return PlainPassword{}, fmt.Errorf("%w: must be at least %d characters", ErrInvalidPassword, passwordMinLength)
	}
	if len(raw) > passwordMaxLength {
		return PlainPassword{}, fmt.Errorf("%w: must be at most %d characters", ErrInvalidPassword, passwordMaxLength)
	}
	return PlainPassword{value: raw}, nil
}

func (p PlainPassword) Value() string { return p.value }

// String hides the secret from logs and diagnostics.
func (p PlainPassword) String() string { return "***" }

// HashedPassword is the only password form that may be persisted.
type HashedPassword struct {
	value string
}

// NewHashedPassword accepts an encoded bcrypt hash, rejecting anything that
// does not match the expected format.
func NewHashedPassword(encoded string) (HashedPassword, error) {
	if encoded == "" {
		return HashedPassword{}, fmt.Errorf("%w: empty", ErrInvalidHash)
	}
	if !strings.HasPrefix(encoded, "$2") {
		return HashedPassword{}, fmt.Errorf("%w: missing bcrypt prefix", ErrInvalidHash)
	}
	if len(encoded) != bcryptHashLength {
		return HashedPassword{}, fmt.Errorf("%w: unexpected length %d", ErrInvalidHash, len(encoded))
	}
	return HashedPassword{value: encoded}, nil
}

func (h HashedPassword) Value() string { return h.value }

// String hides the hash from logs and diagnostics.
func (h HashedPassword) String() string { return "***" }

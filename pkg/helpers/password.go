package helpers

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/argentumhq/argentum/internal/domain/valueobject"
)

// ErrMalformedHash signals that a persisted hash could not be parsed as
// bcrypt output. This means corrupted stored data, not a wrong password,
// and callers should log it at a higher severity than a plain mismatch.
var ErrMalformedHash = errors.New("malformed password hash")

// BcryptHasher hashes and verifies passwords with bcrypt.
// The cost (work factor) is fixed at construction time.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash derives a salted bcrypt hash from the plain password.
func (h *BcryptHasher) Hash(plain valueobject.PlainPassword) (valueobject.HashedPassword, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain.Value()), h.cost)
	if err != nil {
		return valueobject.HashedPassword{}, fmt.Errorf("bcrypt hash: %w", err)
	}
	return valueobject.NewHashedPassword(string(b))
}

// Verify reports whether plain matches hashed. A mismatch is (false, nil);
// an unparseable stored hash is (false, ErrMalformedHash).
func (h *BcryptHasher) Verify(plain valueobject.PlainPassword, hashed valueobject.HashedPassword) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed.Value()), []byte(plain.Value()))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
}

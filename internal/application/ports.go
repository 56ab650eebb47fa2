package application

import (
	"time"

	"github.com/argentumhq/argentum/internal/domain/valueobject"
	"github.com/argentumhq/argentum/pkg/helpers"
)

// PasswordHasher abstracts one-way password hashing.
// Production implementation: helpers.BcryptHasher.
type PasswordHasher interface {
	Hash(plain valueobject.PlainPassword) (valueobject.HashedPassword, error)
	// Verify returns (false, nil) on a mismatch and a helpers.ErrMalformedHash
	// error when the stored hash cannot be parsed.
	Verify(plain valueobject.PlainPassword, hashed valueobject.HashedPassword) (bool, error)
}

// TokenManager abstracts issuance and verification of signed, time-limited
// bearer tokens. Production implementation: helpers.JWTManager.
type TokenManager interface {
	Issue(userID, email string) (token string, expiresAt time.Time, err error)
	Verify(token string) (*helpers.Claims, error)
	// ExpirationOf extracts the expiry without full verification. Diagnostics
	// only; never an authorization decision.
	ExpirationOf(token string) (time.Time, error)
}

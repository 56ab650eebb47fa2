package valueobject

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidEmail is returned when an email address fails validation.
var ErrInvalidEmail = errors.New("invalid email")

const emailMaxLength = 255

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email is an immutable, lowercase-normalized email address.
// Two Email values compare equal iff their normalized forms are equal.
type Email struct {
	value string
}

// NewEmail validates and normalizes a raw email address.
func NewEmail(raw string) (Email, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return Email{}, fmt.Errorf("%w: empty", ErrInvalidEmail)
	}
	if len(v) > emailMaxLength {
		return Email{}, fmt.Errorf("%w: longer than %d characters", ErrInvalidEmail, emailMaxLength)
	}
	if !emailPattern.MatchString(v) {
		return Email{}, fmt.Errorf("%w: malformed address", ErrInvalidEmail)
	}
	return Email{value: v}, nil
}

func (e Email) Value() string  { return e.value }
func (e Email) String() string { return e.value }

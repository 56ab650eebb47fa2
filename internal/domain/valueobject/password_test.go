package valueobject

import (
	"errors"
	"strings"
	"testing"
)

func TestNewPlainPasswordBounds(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"too short", "short", false},
		{"seven chars", "1234567", false},
		{"minimum length", "12345678", true},
		{"typical", "correct horse battery", true},
		{"maximum length", strings.Repeat("x", 128), true},
		{"over maximum", strings.Repeat("x", 129), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPlainPassword(tc.raw)
			if tc.ok && err != nil {
				t.Fatalf("NewPlainPassword: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidPassword) {
				t.Fatalf("NewPlainPassword(%q) = %v, want ErrInvalidPassword", tc.raw, err)
			}
		})
	}
}

func TestPlainPasswordStringHidesSecret(t *testing.T) {
	p, err := NewPlainPassword("supersecret")
	if err != nil {
		t.Fatalf("NewPlainPassword: %v", err)
	}
	if got := p.String(); strings.Contains(got, "supersecret") {
		t.Fatalf("String() leaked the secret: %q", got)
	}
	if p.Value() != "supersecret" {
		t.Fatalf("Value() = %q", p.Value())
	}
}

func TestNewHashedPasswordFormat(t *testing.T) {
	// A real bcrypt hash is $2...$ and exactly 60 bytes.
	valid := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	if _, err := NewHashedPassword(valid); err != nil {
		t.Fatalf("NewHashedPassword(valid) = %v", err)
	}

	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"plaintext", "not-a-hash"},
		{"wrong prefix", "$1a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"},
		{"truncated", valid[:40]},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewHashedPassword(tc.raw); !errors.Is(err, ErrInvalidHash) {
				t.Fatalf("NewHashedPassword(%q) = %v, want ErrInvalidHash", tc.raw, err)
			}
		})
	}
}

func TestHashedPasswordStringHidesHash(t *testing.T) {
	valid := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	h, err := NewHashedPassword(valid)
	if err != nil {
		t.Fatalf("NewHashedPassword: %v", err)
	}
	if got := h.String(); strings.Contains(got, "$2a$") {
		t.Fatalf("String() leaked the hash: %q", got)
	}
}

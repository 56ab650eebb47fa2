package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/argentumhq/argentum/internal/domain/entity"
	"github.com/argentumhq/argentum/internal/domain/repository"
	"github.com/argentumhq/argentum/internal/domain/valueobject"
)

func newUser(t *testing.T, email, username string) *entity.User {
	t.Helper()
	e, err := valueobject.NewEmail(email)
	if err != nil {
		t.Fatalf("NewEmail: %v", err)
	}
	h, err := valueobject.NewHashedPassword("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
	if err != nil {
		t.Fatalf("NewHashedPassword: %v", err)
	}
	u, err := entity.NewUser(e, h, username)
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	return u
}

func TestSaveAndLookups(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	u := newUser(t, "alice@example.com", "alice")

	if err := r.Save(ctx, u); err != nil {
		t.Fatalf("Save: %v", err)
	}

	byID, err := r.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID.Username != "alice" {
		t.Fatalf("Username = %q", byID.Username)
	}

	byEmail, err := r.FindByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("FindByEmail returned %q, want %q", byEmail.ID, u.ID)
	}

	byName, err := r.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if byName.ID != u.ID {
		t.Fatalf("FindByUsername returned %q, want %q", byName.ID, u.ID)
	}
}

func TestLookupMissReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	if _, err := r.FindByID(ctx, "nope"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("FindByID = %v, want ErrUserNotFound", err)
	}
	e, _ := valueobject.NewEmail("ghost@example.com")
	if _, err := r.FindByEmail(ctx, e); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("FindByEmail = %v, want ErrUserNotFound", err)
	}
	if _, err := r.FindByUsername(ctx, "ghost"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("FindByUsername = %v, want ErrUserNotFound", err)
	}
}

func TestSaveEnforcesUniqueness(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	if err := r.Save(ctx, newUser(t, "alice@example.com", "alice")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var conflict *repository.AlreadyExistsError

	err := r.Save(ctx, newUser(t, "alice@example.com", "other"))
	if !errors.As(err, &conflict) || conflict.Field != "email" {
		t.Fatalf("duplicate email Save = %v, want email conflict", err)
	}

	err = r.Save(ctx, newUser(t, "other@example.com", "alice"))
	if !errors.As(err, &conflict) || conflict.Field != "username" {
		t.Fatalf("duplicate username Save = %v, want username conflict", err)
	}

	if n, _ := r.Count(ctx); n != 1 {
		t.Fatalf("Count = %d after failed saves, want 1", n)
	}
}

func TestUpdateEnforcesUniquenessExcludingSelf(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	alice := newUser(t, "alice@example.com", "alice")
	bob := newUser(t, "bob@example.com", "bob")
	if err := r.Save(ctx, alice); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := r.Save(ctx, bob); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Re-saving yourself unchanged is fine.
	if err := r.Update(ctx, alice); err != nil {
		t.Fatalf("self Update: %v", err)
	}

	// Taking bob's username is not.
	if err := alice.UpdateUsername("bob"); err != nil {
		t.Fatalf("UpdateUsername: %v", err)
	}
	var conflict *repository.AlreadyExistsError
	if err := r.Update(ctx, alice); !errors.As(err, &conflict) || conflict.Field != "username" {
		t.Fatalf("Update = %v, want username conflict", err)
	}

	missing := newUser(t, "ghost@example.com", "ghost")
	if err := r.Update(ctx, missing); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("Update(missing) = %v, want ErrUserNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	u := newUser(t, "alice@example.com", "alice")
	if err := r.Save(ctx, u); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := r.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.FindByID(ctx, u.ID); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("FindByID after delete = %v, want ErrUserNotFound", err)
	}
	if err := r.Delete(ctx, u.ID); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("second Delete = %v, want ErrUserNotFound", err)
	}
}

func TestListAllPagination(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	for i := 0; i < 5; i++ {
		u := newUser(t, fmt.Sprintf("user%d@example.com", i), fmt.Sprintf("user%d", i))
		u.CreatedAt = time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC)
		if err := r.Save(ctx, u); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	page, err := r.ListAll(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("len(page) = %d, want 2", len(page))
	}
	if page[0].Username != "user1" || page[1].Username != "user2" {
		t.Fatalf("page = [%s, %s], want [user1, user2]", page[0].Username, page[1].Username)
	}

	empty, err := r.ListAll(ctx, 10, 2)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("len = %d past the end, want 0", len(empty))
	}
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/argentumhq/argentum/internal/domain/entity"
	"github.com/argentumhq/argentum/internal/domain/repository"
	"github.com/argentumhq/argentum/internal/domain/valueobject"
)

// UserRepository is an in-memory repository.UserRepository used by unit
// tests. Uniqueness of email and username is enforced the same way the
// Postgres unique indexes do, including for callers that skip pre-checks.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]entity.User // keyed by id, stored by value
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]entity.User)}
}

func (r *UserRepository) Save(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email.Value() == u.Email.Value() {
			return &repository.AlreadyExistsError{Field: "email", Value: u.Email.Value()}
		}
		if existing.Username == u.Username {
			return &repository.AlreadyExistsError{Field: "username", Value: u.Username}
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (r *UserRepository) FindByEmail(_ context.Context, email valueobject.Email) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email.Value() == email.Value() {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, existing := range r.users {
		if id == u.ID {
			continue
		}
		if existing.Email.Value() == u.Email.Value() {
			return &repository.AlreadyExistsError{Field: "email", Value: u.Email.Value()}
		}
		if existing.Username == u.Username {
			return &repository.AlreadyExistsError{Field: "username", Value: u.Username}
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email valueobject.Email) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email.Value() == email.Value() {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) ListAll(_ context.Context, skip, limit int) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*entity.User, 0, len(r.users))
	for id := range r.users {
		u := r.users[id]
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if skip >= len(all) {
		return []*entity.User{}, nil
	}
	all = all[skip:]
	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

var _ repository.UserRepository = (*UserRepository)(nil)

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/argentumhq/argentum/internal/domain/entity"
	"github.com/argentumhq/argentum/internal/domain/repository"
	"github.com/argentumhq/argentum/internal/domain/valueobject"
)

const userColumns = `id, email, username, hashed_password, is_active, is_verified, created_at, updated_at`

// UserRepository is the pgx-backed implementation of repository.UserRepository.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Email.Value(), u.Username, u.HashedPassword.Value(), u.IsActive, u.IsVerified, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if conflict := asConflict(err, u); conflict != nil {
			return conflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email valueobject.Email) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email.Value())
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, username = $2, hashed_password = $3, is_active = $4, is_verified = $5, updated_at = $6
		WHERE id = $7
	`, u.Email.Value(), u.Username, u.HashedPassword.Value(), u.IsActive, u.IsVerified, u.UpdatedAt, u.ID)
	if err != nil {
		if conflict := asConflict(err, u); conflict != nil {
			return conflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email valueobject.Email) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email.Value())
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserRepository) ListAll(ctx context.Context, skip, limit int) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY created_at OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*entity.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return exists, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u           entity.User
		rawEmail    string
		rawPassword string
	)
	err := row.Scan(&u.ID, &rawEmail, &u.Username, &rawPassword, &u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if u.Email, err = valueobject.NewEmail(rawEmail); err != nil {
		return nil, fmt.Errorf("stored email for user %s: %w", u.ID, err)
	}
	if u.HashedPassword, err = valueobject.NewHashedPassword(rawPassword); err != nil {
		return nil, fmt.Errorf("stored hash for user %s: %w", u.ID, err)
	}
	return &u, nil
}

// asConflict maps a unique-index violation to the domain conflict error.
// The index names are set by the migrations; matching on them tells apart
// the email and username conflicts.
func asConflict(err error, u *entity.User) *repository.AlreadyExistsError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "username") {
		return &repository.AlreadyExistsError{Field: "username", Value: u.Username}
	}
	return &repository.AlreadyExistsError{Field: "email", Value: u.Email.Value()}
}

var _ repository.UserRepository = (*UserRepository)(nil)

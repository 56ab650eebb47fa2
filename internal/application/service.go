package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/argentumhq/argentum/internal/domain/entity"
	repo "github.com/argentumhq/argentum/internal/domain/repository"
	"github.com/argentumhq/argentum/internal/domain/valueobject"
	"github.com/argentumhq/argentum/pkg/helpers"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the two cases stay indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotActive      = errors.New("user account is not active")
)

const (
	// TokenType is the fixed token_type constant returned on login.
	TokenType = "bearer"

	profileCacheTTL = 5 * time.Minute
)

func profileKey(userID string) string {
	return "user:profile:" + userID
}

// Service orchestrates the auth use cases over the domain services.
type Service struct {
	Repo   repo.UserRepository
	Hasher PasswordHasher
	Tokens TokenManager
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewService(r repo.UserRepository, hasher PasswordHasher, tokens TokenManager, rdb *redis.Client, logger *logrus.Logger) *Service {
	return &Service{
		Repo:   r,
		Hasher: hasher,
		Tokens: tokens,
		Redis:  rdb,
		Logger: logger,
	}
}

// UserProjection is the caller-facing view of a user. It never carries the
// password hash or any raw secret.
type UserProjection struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// TokenResult is the successful login payload.
type TokenResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type RegisterInput struct {
	Email    string
	Password string
	Username string
}

func projectionOf(u *entity.User) *UserProjection {
	return &UserProjection{
		ID:         u.ID,
		Email:      u.Email.Value(),
		Username:   u.Username,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// Register creates a new active, unverified user.
//
// The existence pre-checks give precise early conflict errors but are not
// the race guard: two concurrent registrations with the same email can both
// pass them, and the loser fails at Save on the storage unique index, which
// the repository reports as the same *repo.AlreadyExistsError.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*UserProjection, error) {
	email, err := valueobject.NewEmail(in.Email)
	if err != nil {
		return nil, err
	}
	plain, err := valueobject.NewPlainPassword(in.Password)
	if err != nil {
		return nil, err
	}

	if exists, err := s.Repo.ExistsByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("check email existence: %w", err)
	} else if exists {
		return nil, &repo.AlreadyExistsError{Field: "email", Value: email.Value()}
	}
	if exists, err := s.Repo.ExistsByUsername(ctx, in.Username); err != nil {
		return nil, fmt.Errorf("check username existence: %w", err)
	} else if exists {
		return nil, &repo.AlreadyExistsError{Field: "username", Value: in.Username}
	}

	hashed, err := s.Hasher.Hash(plain)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := entity.NewUser(email, hashed, in.Username)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.Save(ctx, u); err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"user_id":  u.ID,
			"email":    u.Email.Value(),
			"username": u.Username,
		}).Info("user registered")
	}
	return projectionOf(u), nil
}

// Login verifies credentials and issues an access token.
//
// An unknown email and a wrong password fail with the identical
// ErrInvalidCredentials; an inactive account is a distinguishable failure
// because reaching that check already required valid credentials.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	addr, err := valueobject.NewEmail(email)
	if err != nil {
		return nil, err
	}

	u, err := s.Repo.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			if s.Logger != nil {
				s.Logger.WithField("reason", "unknown_email").Warn("login failed")
			}
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	plain, err := valueobject.NewPlainPassword(password)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	ok, err := s.Hasher.Verify(plain, u.HashedPassword)
	if err != nil {
		// Corrupted persisted hash; fatal for this record.
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("stored password hash is malformed")
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{
				"user_id": u.ID,
				"reason":  "invalid_password",
			}).Warn("login failed")
		}
		return nil, ErrInvalidCredentials
	}

	if !u.IsActive {
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{
				"user_id": u.ID,
				"reason":  "inactive_user",
			}).Warn("login failed")
		}
		return nil, ErrUserNotActive
	}

	token, exp, err := s.Tokens.Issue(u.ID, u.Email.Value())
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		}
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.cacheProfile(ctx, u)

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"user_id":  u.ID,
			"username": u.Username,
		}).Info("user logged in")
	}
	return &TokenResult{AccessToken: token, TokenType: TokenType, ExpiresAt: exp}, nil
}

// CurrentUser resolves the authenticated user's projection, serving from
// the Redis cache when possible.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*UserProjection, error) {
	if s.Redis != nil {
		var cached UserProjection
		if hit, err := helpers.RedisGetJSON(ctx, s.Redis, profileKey(userID), &cached); err == nil && hit {
			return &cached, nil
		}
	}

	u, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cacheProfile(ctx, u)
	return projectionOf(u), nil
}

func (s *Service) cacheProfile(ctx context.Context, u *entity.User) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, profileKey(u.ID), projectionOf(u), profileCacheTTL); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", profileKey(u.ID)).Warn("profile cache write failed")
	}
}

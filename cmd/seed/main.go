package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/argentumhq/argentum/config"
	"github.com/argentumhq/argentum/internal/domain/valueobject"
	"github.com/argentumhq/argentum/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@argentum.dev"
	username := "demo"
	password := "password123"

	plain, err := valueobject.NewPlainPassword(password)
	if err != nil {
		log.Fatalf("invalid seed password: %v", err)
	}
	hasher := helpers.NewBcryptHasher(cfg.BcryptCost)
	hash, err := hasher.Hash(plain)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (id, email, username, hashed_password, is_active, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, true, true, now(), now())
		ON CONFLICT (email) DO UPDATE SET username = EXCLUDED.username, updated_at = now()
		RETURNING id
	`, uuid.NewString(), email, username, hash.Value()).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", id, email, username, password)
}

package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/kaamsetu/kaamsetu-api/config"
	"github.com/kaamsetu/kaamsetu-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	mobile := "9000000001"
	email := "admin@kaamsetu.in"
	password := "admin12345"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO identities (mobile, email, password_hash, role, is_active, is_verified)
		VALUES ($1, $2, $3, 'admin', true, true)
		ON CONFLICT (mobile) DO UPDATE SET email = EXCLUDED.email
		RETURNING id
	`, mobile, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s mobile=%s email=%s password=%s\n", id, mobile, email, password)
}

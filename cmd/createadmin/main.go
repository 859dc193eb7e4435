package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ashlink/marketplace/internal/auth"
	"github.com/ashlink/marketplace/internal/config"
	"github.com/ashlink/marketplace/internal/market"
	"github.com/ashlink/marketplace/internal/postgres"
)

// Bootstraps the platform admin account. Idempotent: exits cleanly if the
// account already exists.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "createadmin").Logger()

	email := getenv("ADMIN_EMAIL", "admin@ashlink.example")
	password := getenv("ADMIN_PASSWORD", "admin")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	repo := market.NewRepo(db)
	if _, err := repo.UserByEmail(ctx, email); err == nil {
		log.Info().Str("email", email).Msg("admin user already exists")
		return
	} else if !errors.Is(err, market.ErrNotFound) {
		log.Fatal().Err(err).Msg("lookup admin user")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}

	now := time.Now().UTC()
	u := market.User{
		ID:            uuid.NewString(),
		Email:         email,
		PasswordHash:  hash,
		Company:       "AshLink Administration",
		ContactPerson: "System Administrator",
		Phone:         "+91-9999999999",
		Role:          market.RoleAdmin,
		Address:       "AshLink Headquarters",
		City:          "Mumbai",
		State:         "Maharashtra",
		KYCVerified:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.InsertUser(ctx, u); err != nil {
		log.Fatal().Err(err).Msg("insert admin user")
	}
	log.Info().Str("email", email).Msg("admin user created")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

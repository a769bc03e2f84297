package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/config"
	userapp "github.com/oksasatya/user-account-service/internal/application"
	pginfra "github.com/oksasatya/user-account-service/internal/infrastructure/postgres"
	"github.com/oksasatya/user-account-service/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, time.Minute)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	repo := pginfra.NewUserRepository(pool)
	defer repo.Rollback(context.Background())
	svc := userapp.NewUserService(repo, helpers.BcryptHasher{}, userapp.SystemClock{}, logger)

	phone := "(11) 98765-4321"
	u, err := svc.Create(ctx, userapp.CreateUserInput{
		Name:      "Demo User",
		Email:     "demo@example.com",
		Password:  "password123",
		BirthDate: time.Date(1990, time.May, 10, 0, 0, 0, 0, time.UTC),
		Phone:     &phone,
	})
	switch {
	case errors.Is(err, userapp.ErrEmailConflict):
		logger.WithField("email", "demo@example.com").Info("demo user already seeded")
	case err != nil:
		logger.Fatalf("failed to seed user: %v", err)
	default:
		logger.WithFields(logrus.Fields{"id": u.ID, "email": u.Email}).Info("seeded demo user")
	}
}

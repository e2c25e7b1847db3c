package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"domainsale/internal/auth"
	"domainsale/internal/config"
	"domainsale/internal/db"
	"domainsale/internal/repository"
	"domainsale/internal/service"
)

func main() {
	resetPassword := flag.Bool("reset-password", false, "overwrite the admin password with ADMIN_PASSWORD if the user exists")
	flag.Parse()

	log.Println("Starting seed script...")

	// Load configuration
	cfg := config.Load()
	if cfg.MySQLDSN == "" {
		log.Fatal("MYSQL_DSN is required for seeding")
	}
	if cfg.AdminPassword == "" {
		log.Fatal("ADMIN_PASSWORD is required for seeding")
	}

	// Connect to database
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)

	action, err := seedAdmin(ctx, userRepo, cfg.AdminUsername, cfg.AdminPassword, *resetPassword)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	log.Printf("Admin user %q: %s", cfg.AdminUsername, action)

	siteConfig, err := service.NewSiteConfigService(repository.NewSiteConfigRepository(gormDB)).EnsureDefault(ctx)
	if err != nil {
		log.Fatalf("Failed to seed site config: %v", err)
	}
	log.Printf("Site config ready for %s", siteConfig.DomainName)

	log.Printf("Seed completed successfully!")
}

// seedAdmin creates the admin account, or resets its password when reset is set.
func seedAdmin(ctx context.Context, repo repository.UserRepository, username, password string, reset bool) (string, error) {
	existing, err := repo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("error checking user %s: %w", username, err)
	}

	if existing == nil {
		if _, err := service.NewUserService(repo).CreateUser(ctx, username, password); err != nil {
			return "", fmt.Errorf("error creating user %s: %w", username, err)
		}
		return "created", nil
	}

	if !reset {
		return "already exists, left unchanged", nil
	}
	if len(password) < service.MinPasswordLength {
		return "", fmt.Errorf("ADMIN_PASSWORD must be at least %d characters", service.MinPasswordLength)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	if err := repo.UpdatePassword(ctx, existing.ID, hash); err != nil {
		return "", fmt.Errorf("error updating user %s: %w", username, err)
	}
	return "password reset", nil
}

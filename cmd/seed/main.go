// Command seed creates the initial admin account. Intended for first-time
// setup; it refuses to run when the username is already taken.
package main

import (
	"context"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/classfund/treasury-server/internal/config"
	"github.com/classfund/treasury-server/internal/logger"
	"github.com/classfund/treasury-server/internal/models"
	"github.com/classfund/treasury-server/internal/repository"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.Server.Env)
	defer logger.Sync()
	log := logger.L()

	username := envOr("ADMIN_USERNAME", "admin")
	email := envOr("ADMIN_EMAIL", "admin@example.com")
	fullName := envOr("ADMIN_FULL_NAME", "Administrator")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD must be set")
	}

	db, err := config.SetupDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}
	defer db.Close()

	repo := repository.NewPostgresRepository(db)
	ctx := context.Background()

	existing, err := repo.GetUserByUsername(ctx, username)
	if err != nil {
		log.Fatalf("Failed to check for existing user: %v", err)
	}
	if existing != nil {
		log.Fatalf("User %q already exists", username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}

	// No acting user yet, so no audit entry is written
	if err := repo.CreateUser(ctx, user, nil); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	log.Infof("Created admin user %q (id %d)", user.Username, user.ID)
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

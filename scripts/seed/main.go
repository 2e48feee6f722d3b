// Command seed provisions local user accounts so a fresh deployment has
// something to log in with. Run it against the same database the gateway
// uses:
//
//	go run ./scripts/seed -email admin@school.local -password changeme -role ADMIN
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/school-ledger-api/internal/docstore"
	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/repository"
	"github.com/noah-isme/school-ledger-api/internal/service"
	"github.com/noah-isme/school-ledger-api/pkg/config"
	"github.com/noah-isme/school-ledger-api/pkg/database"
)

func main() {
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password")
	role := flag.String("role", string(models.RoleStudent), "ADMIN, STAFF or STUDENT")
	fullName := flag.String("name", "", "display name")
	className := flag.String("class", "", "class name (students)")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("email and password are required")
	}
	userRole := models.UserRole(*role)
	switch userRole {
	case models.RoleAdmin, models.RoleStaff, models.RoleStudent:
	default:
		log.Fatalf("unknown role %q", *role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	hash, err := service.HashPassword(*password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepository(docstore.NewPostgres(db, cfg.Docstore.Table, nil))

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        *email,
		PasswordHash: hash,
		FullName:     *fullName,
		Role:         userRole,
		ClassName:    *className,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if existing, err := users.FindByEmail(ctx, *email); err == nil {
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
	}

	if err := users.Upsert(ctx, user); err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	log.Printf("seeded %s user %s (%s)", user.Role, user.Email, user.ID)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"tentkids/internal/auth"
	"tentkids/internal/config"
	"tentkids/internal/db"
)

func main() {
	cfg := config.Load()

	database, err := db.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.InitSchema(); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}

	fmt.Println("Seeding parent accounts...")

	ctx := context.Background()
	accounts := []struct {
		email    string
		password string
		approved bool
	}{
		{"mona@example.com", "password123", true},
		{"khalid@example.com", "password123", true},
		{"sara@example.com", "password123", false},
	}

	for _, a := range accounts {
		hash, err := auth.HashPassword(a.password)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		user, err := database.CreateUser(ctx, a.email, hash)
		if errors.Is(err, auth.ErrEmailTaken) {
			fmt.Printf("Skipped existing account: %s\n", a.email)
			continue
		}
		if err != nil {
			log.Printf("failed to create user %s: %v", a.email, err)
			continue
		}

		now := time.Now().UTC()
		err = database.CreateProfileRole(ctx, auth.ProfileRole{
			ID:              user.ID,
			Role:            auth.RoleChild,
			ParentEmail:     a.email,
			TermsAccepted:   true,
			TermsAcceptedAt: now,
			CreatedAt:       now,
		})
		if err != nil {
			log.Printf("failed to create profile role for %s: %v", a.email, err)
			continue
		}
		fmt.Printf("Created account: %s (ID: %s)\n", a.email, user.ID)

		if a.approved {
			if err := database.ApproveProfile(ctx, user.ID); err != nil {
				log.Printf("failed to approve %s: %v", a.email, err)
				continue
			}
			fmt.Printf("Approved child profile for %s\n", a.email)
		}
	}

	fmt.Println("Seeding completed!")
}

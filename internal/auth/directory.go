package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmailTaken   = errors.New("email already exists")
	ErrUserNotFound = errors.New("user not found")
)

const RoleChild = "child"

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// ProfileRole is the companion record written after a successful sign-up.
// A parent must approve the child account before it is fully enabled.
type ProfileRole struct {
	ID              uuid.UUID
	Role            string
	Approved        bool
	ParentEmail     string
	TermsAccepted   bool
	TermsAcceptedAt time.Time
	CreatedAt       time.Time
}

// Directory is the account store behind the Provider.
type Directory interface {
	CreateUser(ctx context.Context, email, passwordHash string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	CreateProfileRole(ctx context.Context, role ProfileRole) error
}

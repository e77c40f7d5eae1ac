// Package db is the Postgres account directory used by the identity provider.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tentkids/internal/auth"
)

type DB struct {
	*sql.DB
}

func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) InitSchema() error {
	schema := `
	CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		role TEXT NOT NULL CHECK (role IN ('child', 'parent')),
		approved BOOLEAN NOT NULL DEFAULT FALSE,
		parent_email TEXT NOT NULL,
		terms_accepted BOOLEAN NOT NULL,
		terms_accepted_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_parent_email ON profiles(parent_email);
	`

	_, err := db.Exec(schema)
	return err
}

func (db *DB) CreateUser(ctx context.Context, email, passwordHash string) (auth.User, error) {
	u := auth.User{Email: email, PasswordHash: passwordHash}
	err := db.QueryRowContext(ctx,
		"INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id, created_at",
		email, passwordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.User{}, auth.ErrEmailTaken
		}
		return auth.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (db *DB) UserByEmail(ctx context.Context, email string) (auth.User, error) {
	var u auth.User
	err := db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE email = $1",
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

func (db *DB) CreateProfileRole(ctx context.Context, r auth.ProfileRole) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO profiles (id, role, approved, parent_email, terms_accepted, terms_accepted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.Role, r.Approved, r.ParentEmail, r.TermsAccepted, r.TermsAcceptedAt, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// ApproveProfile is the parent's confirmation of a child account.
func (db *DB) ApproveProfile(ctx context.Context, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, "UPDATE profiles SET approved = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to approve profile: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

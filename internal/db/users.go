package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrEmailRequired is returned when a user operation has no email.
var ErrEmailRequired = errors.New("email is required")

// UpsertUser creates the user for email or refreshes its name and image.
// Empty name or image values keep what is stored.
func (db *DB) UpsertUser(ctx context.Context, email, name, image string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	var u User
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, name, image)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO UPDATE SET
		   name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
		   image = COALESCE(NULLIF(EXCLUDED.image, ''), users.image),
		   updated_at = NOW()
		 RETURNING id, email, name, image, created_at, updated_at`,
		uuid.New(), email, name, image,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &u, nil
}

// GetUserByEmail retrieves a user by email. Returns nil, nil when not found.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}

	var u User
	err := db.pool.QueryRow(ctx,
		`SELECT id, email, name, image, created_at, updated_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// DeleteUser removes a user and, by cascade, its resumes and analyses.
func (db *DB) DeleteUser(ctx context.Context, email string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM users WHERE email = $1`, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

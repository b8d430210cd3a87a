package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// User is the minimal user record backing session auth.
type User struct {
	ID       uuid.UUID
	Email    string
	Name     string
	GoogleID string
	Picture  string
	Role     string
}

// UserRepo manages user records.
type UserRepo struct {
	db *DB
}

// Upsert creates the user on first login and refreshes profile fields on
// subsequent logins. New users get the student role.
func (r *UserRepo) Upsert(ctx context.Context, email, name, googleID, picture string) (*User, error) {
	row := r.db.Pool.QueryRow(ctx, `
INSERT INTO users (id, email, name, google_id, picture, role)
VALUES ($1, $2, $3, $4, $5, 'student')
ON CONFLICT (email)
DO UPDATE SET name = EXCLUDED.name, google_id = EXCLUDED.google_id, picture = EXCLUDED.picture
RETURNING id, email, name, google_id, picture, role`,
		uuid.New(), email, name, googleID, picture)

	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.GoogleID, &u.Picture, &u.Role); err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", email, err)
	}
	return &u, nil
}

// Get fetches a user by id.
func (r *UserRepo) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.db.Pool.QueryRow(ctx, `
SELECT id, email, name, google_id, picture, role FROM users WHERE id = $1`, id)

	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.GoogleID, &u.Picture, &u.Role); err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB holds the connection pool and the repositories built on it.
type DB struct {
	Pool    *pgxpool.Pool
	Users   *UserRepo
	Quizzes *QuizRepo
	FER     *FERRepo
}

// NewDB connects to the database at dbURL.
func NewDB(ctx context.Context, dbURL string) (*DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	db := &DB{Pool: pool}
	db.Users = &UserRepo{db: db}
	db.Quizzes = &QuizRepo{db: db}
	db.FER = &FERRepo{db: db}
	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

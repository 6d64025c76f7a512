package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cesargomez89/mixtape/internal/domain"
)

// UpsertUser creates the user or renames an existing one with the same email.
func (db *DB) UpsertUser(ctx context.Context, email, displayName string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", domain.ErrValidation)
	}

	if _, err := db.ExecContext(ctx, db.dialect.upsertUser, email, displayName, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return db.GetUserByEmail(ctx, email)
}

func (db *DB) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return db.getUser(ctx, `SELECT id, email, display_name, created_at FROM users WHERE id = ?`, id)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return db.getUser(ctx, `SELECT id, email, display_name, created_at FROM users WHERE email = ?`, email)
}

func (db *DB) getUser(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var user domain.User
	if err := db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ListUsers returns users ordered by id.
func (db *DB) ListUsers(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	err := db.SelectContext(ctx, &users, `SELECT id, email, display_name, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

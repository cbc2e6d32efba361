// Package auth provides the minimal user store behind token issuing. The SPA
// is the only client; full account management lives outside this service.
package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	// EnsureUser returns the user with the given username, creating it on
	// first sight.
	EnsureUser(ctx context.Context, username string) (*models.User, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewRepositoryImpl(pgpool *pgxpool.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

func (r *RepositoryImpl) EnsureUser(ctx context.Context, username string) (*models.User, error) {
	l := r.logger.With(zap.String("method", "EnsureUser"), zap.String("username", username))

	if username == "" {
		return nil, fmt.Errorf("username cannot be empty: %w", models.ErrValidation)
	}

	query := `
        INSERT INTO users (username, email, password_hash)
        VALUES ($1, $1 || '@local', '')
        ON CONFLICT (username) DO UPDATE SET updated_at = Now()
        RETURNING id, username, email, created_at, updated_at`

	var u models.User
	err := r.pgpool.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.Email, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		l.Error("Failed to ensure user", zap.Error(err))
		return nil, fmt.Errorf("database error ensuring user: %w", err)
	}
	return &u, nil
}

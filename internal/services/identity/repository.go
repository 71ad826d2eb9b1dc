// Package identity is the minimal user store the other services consult
// for existence checks, roles and customer-type gating.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/database"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

// PostgresRepository reads and writes users.
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a user repository over the given pool.
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetUser loads one user.
func (r *PostgresRepository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx,
		`SELECT id, username, email, role_code FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user %d not found", id)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// SetUserRole updates a user's role code.
func (r *PostgresRepository) SetUserRole(ctx context.Context, id int64, role models.RoleCode) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET role_code = $1 WHERE id = $2`, role, id)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user %d not found", id)
	}
	return nil
}

// CreateUser inserts a user with the CLIENT role unless one is given.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleClient
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, role_code) VALUES ($1, $2, $3) RETURNING id`,
		user.Username, user.Email, user.Role,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opaquechat/chat/shared/apperrors"
	"github.com/opaquechat/chat/shared/database"
	"github.com/opaquechat/chat/shared/models"
)

// UserWriteRepository handles all state-mutating operations for users.
// It operates exclusively against the PostgreSQL write store (source of truth).
type UserWriteRepository struct {
	db *sql.DB
}

func NewUserWriteRepository(db *sql.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Create inserts user and fills CreatedAt from the store clock. A username
// taken by a concurrent insert surfaces as the same conflict as the pre-check.
func (r *UserWriteRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO tb_user (id, username, secret_key, public_key)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.SecretKey, user.PublicKey,
	).Scan(&user.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.ErrUsernameConflict(err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserWriteRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM tb_user WHERE username = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

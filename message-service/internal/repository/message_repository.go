package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opaquechat/chat/shared/models"
)

// MessageWriteRepository handles all state-mutating operations for messages.
// It operates exclusively against the PostgreSQL write store (source of truth).
type MessageWriteRepository struct {
	db *sql.DB
}

func NewMessageWriteRepository(db *sql.DB) *MessageWriteRepository {
	return &MessageWriteRepository{db: db}
}

// Create inserts message and fills Timestamp from the store clock.
func (r *MessageWriteRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO tb_mensage (id, encrypted_content, sender_user_id, recipient_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING "timestamp"
	`
	err := r.db.QueryRowContext(ctx, query,
		message.ID, message.EncryptedContent, message.SenderUserID,
		nullString(message.RecipientUserID),
	).Scan(&message.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

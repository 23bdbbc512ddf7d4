package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/opaquechat/chat/shared/models"
	sharedredis "github.com/opaquechat/chat/shared/redis"
	goredis "github.com/redis/go-redis/v9"
)

// RecentLimit is how many messages the recency view holds.
const RecentLimit = 10

const (
	recentMessagesKey    = "message:view:recent"
	recentMessagesGenKey = "message:view:recent:gen"
)

// defaultRecentTTL bounds how long views of superseded generations linger.
const defaultRecentTTL = 5 * time.Second

// MessageReadRepository handles all read operations for messages.
// The recency view is served from Redis and rebuilt from PostgreSQL on a miss.
type MessageReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[[]models.Message]
}

func NewMessageReadRepository(db *sql.DB, redisClient *goredis.Client, ttl time.Duration) *MessageReadRepository {
	if ttl <= 0 {
		ttl = defaultRecentTTL
	}
	return &MessageReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[[]models.Message](redisClient, ttl),
	}
}

// ListRecent returns the RecentLimit most recently stored messages, newest first.
func (r *MessageReadRepository) ListRecent(ctx context.Context) ([]models.Message, error) {
	messages, err := r.cache.LoadCurrent(ctx, recentMessagesKey, recentMessagesGenKey, r.queryRecent)
	if err != nil {
		return nil, err
	}
	return *messages, nil
}

func (r *MessageReadRepository) queryRecent(ctx context.Context) (*[]models.Message, error) {
	query := `
		SELECT id, encrypted_content, sender_user_id, recipient_user_id, "timestamp"
		FROM tb_mensage
		ORDER BY "timestamp" DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0, RecentLimit)
	for rows.Next() {
		var m models.Message
		var recipient sql.NullString

		if err := rows.Scan(
			&m.ID, &m.EncryptedContent, &m.SenderUserID,
			&recipient, &m.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if recipient.Valid {
			m.RecipientUserID = recipient.String
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return &messages, nil
}

// InvalidateRecent retires the cached recency view by starting a new
// generation. Called by the command service right after a successful Create.
func (r *MessageReadRepository) InvalidateRecent(ctx context.Context) {
	if err := r.cache.Bump(ctx, recentMessagesGenKey); err != nil {
		slog.WarnContext(ctx, "failed to invalidate recent messages", "error", err)
	}
}

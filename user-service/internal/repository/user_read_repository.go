package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/opaquechat/chat/shared/apperrors"
	"github.com/opaquechat/chat/shared/models"
	sharedredis "github.com/opaquechat/chat/shared/redis"
	goredis "github.com/redis/go-redis/v9"
)

const (
	userViewKeyPrefix       = "user:view:"
	userByUsernameKeyPrefix = "user:username:"
	userMessageCountPrefix  = "user:messages:"
)

const userColumns = `id, username, secret_key, public_key, created_at`

// UserReadRepository handles all read operations for users.
// It uses Redis as the primary read store, falling back to PostgreSQL on a miss.
// Users are immutable, so cached views never go stale.
type UserReadRepository struct {
	db    *sql.DB
	redis *goredis.Client
	cache *sharedredis.ViewCache[models.User]
}

func NewUserReadRepository(db *sql.DB, redisClient *goredis.Client, ttl time.Duration) *UserReadRepository {
	return &UserReadRepository{
		db:    db,
		redis: redisClient,
		cache: sharedredis.NewViewCache[models.User](redisClient, ttl),
	}
}

// GetByID returns a user from Redis first, then PostgreSQL.
func (r *UserReadRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.cache.Load(ctx, userViewKeyPrefix+id, func(ctx context.Context) (*models.User, error) {
		return r.queryOne(ctx, `SELECT `+userColumns+` FROM tb_user WHERE id = $1`, id)
	})
}

// GetByUsername returns a user by exact username from Redis first, then PostgreSQL.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.cache.Load(ctx, userByUsernameKeyPrefix+username, func(ctx context.Context) (*models.User, error) {
		return r.queryOne(ctx, `SELECT `+userColumns+` FROM tb_user WHERE username = $1`, username)
	})
}

// List returns every user straight from PostgreSQL.
func (r *UserReadRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM tb_user ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.SecretKey, &u.PublicKey, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CacheUser stores the read model for a user under both lookup keys.
// Called by the command service right after a successful Create.
func (r *UserReadRepository) CacheUser(ctx context.Context, user *models.User) {
	r.cache.Set(ctx, user, userViewKeyPrefix+user.ID, userByUsernameKeyPrefix+user.Username)
}

// IncrMessageCount bumps the activity counter of userID.
func (r *UserReadRepository) IncrMessageCount(ctx context.Context, userID string) error {
	if err := r.redis.Incr(ctx, userMessageCountPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to increment message count: %w", err)
	}
	return nil
}

// MessageCount returns the activity counter of userID; zero when unset.
func (r *UserReadRepository) MessageCount(ctx context.Context, userID string) (int64, error) {
	n, err := r.redis.Get(ctx, userMessageCountPrefix+userID).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read message count: %w", err)
	}
	return n, nil
}

func (r *UserReadRepository) queryOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.SecretKey, &u.PublicKey, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

package command

import (
	"context"
	"log/slog"

	"github.com/opaquechat/chat/shared/apperrors"
	"github.com/opaquechat/chat/shared/cqrs"
	"github.com/opaquechat/chat/shared/events"
	"github.com/opaquechat/chat/shared/models"
	"github.com/opaquechat/chat/shared/utils"
	"github.com/opaquechat/chat/user-service/internal/repository"
)

// UserCommandService writes user state to PostgreSQL and keeps the Redis
// read model up to date.
type UserCommandService struct {
	writeRepo *repository.UserWriteRepository
	readRepo  *repository.UserReadRepository
	publisher *events.Publisher
}

func NewUserCommandService(
	writeRepo *repository.UserWriteRepository,
	readRepo *repository.UserReadRepository,
	publisher *events.Publisher,
) *UserCommandService {
	return &UserCommandService{
		writeRepo: writeRepo,
		readRepo:  readRepo,
		publisher: publisher,
	}
}

// CreateUser registers a new user. The existence check and the insert are
// separate statements; the unique index catches a concurrent duplicate.
func (s *UserCommandService) CreateUser(ctx context.Context, cmd cqrs.CreateUserCommand) (*models.User, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.writeRepo.ExistsByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrUsernameTaken
	}

	user := &models.User{
		ID:        utils.GenerateID(),
		Username:  cmd.Username,
		SecretKey: cmd.SecretKey,
		PublicKey: cmd.PublicKey,
	}
	if err := s.writeRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.readRepo.CacheUser(ctx, user)
	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserCreated, events.UserCreatedEvent{
		UserID:   user.ID,
		Username: user.Username,
	}); err != nil {
		slog.WarnContext(ctx, "failed to publish user.created event", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// HandleMessageEvent is the Redis stream subscriber handler.
// It keeps the per-user message counters behind GET /users/:id/stats current.
func (s *UserCommandService) HandleMessageEvent(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.MessageCreated:
		data, err := events.DecodeData[events.MessageCreatedEvent](event)
		if err != nil {
			return err
		}
		slog.DebugContext(ctx, "message event received", "message_id", data.MessageID, "sender_user_id", data.SenderUserID)
		return s.readRepo.IncrMessageCount(ctx, utils.CanonicalID(data.SenderUserID))
	default:
		slog.DebugContext(ctx, "ignoring event", "type", event.Type)
	}
	return nil
}

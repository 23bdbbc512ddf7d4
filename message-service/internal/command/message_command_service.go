package command

import (
	"context"
	"log/slog"

	"github.com/opaquechat/chat/message-service/internal/repository"
	"github.com/opaquechat/chat/shared/cqrs"
	"github.com/opaquechat/chat/shared/events"
	"github.com/opaquechat/chat/shared/models"
	"github.com/opaquechat/chat/shared/utils"
)

// MessageCommandService stores messages. The sender is taken on trust:
// there is no lookup against user-service.
type MessageCommandService struct {
	writeRepo *repository.MessageWriteRepository
	readRepo  *repository.MessageReadRepository
	publisher *events.Publisher
}

func NewMessageCommandService(
	writeRepo *repository.MessageWriteRepository,
	readRepo *repository.MessageReadRepository,
	publisher *events.Publisher,
) *MessageCommandService {
	return &MessageCommandService{
		writeRepo: writeRepo,
		readRepo:  readRepo,
		publisher: publisher,
	}
}

func (s *MessageCommandService) CreateMessage(ctx context.Context, cmd cqrs.CreateMessageCommand) (*models.Message, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:               utils.GenerateID(),
		EncryptedContent: cmd.EncryptedContent,
		SenderUserID:     utils.CanonicalID(cmd.SenderUserID),
		RecipientUserID:  utils.CanonicalID(cmd.RecipientUserID),
	}
	if err := s.writeRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.readRepo.InvalidateRecent(ctx)
	if err := s.publisher.Publish(ctx, events.MessageEventsStream, events.MessageCreated, events.MessageCreatedEvent{
		MessageID:       message.ID,
		SenderUserID:    message.SenderUserID,
		RecipientUserID: message.RecipientUserID,
		Timestamp:       message.Timestamp,
	}); err != nil {
		slog.WarnContext(ctx, "failed to publish message.created event", "message_id", message.ID, "error", err)
	}
	return message, nil
}

package query

import (
	"context"

	"github.com/opaquechat/chat/message-service/internal/repository"
	"github.com/opaquechat/chat/shared/cqrs"
	"github.com/opaquechat/chat/shared/models"
)

type MessageQueryService struct {
	readRepo *repository.MessageReadRepository
}

func NewMessageQueryService(readRepo *repository.MessageReadRepository) *MessageQueryService {
	return &MessageQueryService{readRepo: readRepo}
}

// ListRecentMessages returns the newest messages first. Ties on timestamp
// come back in whatever order the store picks.
func (s *MessageQueryService) ListRecentMessages(ctx context.Context, _ cqrs.ListRecentMessagesQuery) ([]models.Message, error) {
	return s.readRepo.ListRecent(ctx)
}

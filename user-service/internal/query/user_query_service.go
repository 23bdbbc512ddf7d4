package query

import (
	"context"

	"github.com/opaquechat/chat/shared/apperrors"
	"github.com/opaquechat/chat/shared/cqrs"
	"github.com/opaquechat/chat/shared/models"
	"github.com/opaquechat/chat/shared/utils"
	"github.com/opaquechat/chat/user-service/internal/repository"
)

// UserQueryService reads user views from the Redis cache (with a Postgres fallback).
type UserQueryService struct {
	readRepo *repository.UserReadRepository
}

func NewUserQueryService(readRepo *repository.UserReadRepository) *UserQueryService {
	return &UserQueryService{readRepo: readRepo}
}

// GetUser treats a malformed id as a miss: no such user can exist.
func (s *UserQueryService) GetUser(ctx context.Context, q cqrs.GetUserQuery) (*models.User, error) {
	if !utils.ValidateID(q.UserID) {
		return nil, apperrors.ErrUserNotFound
	}
	return s.readRepo.GetByID(ctx, utils.CanonicalID(q.UserID))
}

func (s *UserQueryService) GetUserByUsername(ctx context.Context, q cqrs.GetUserByUsernameQuery) (*models.User, error) {
	if q.Username == "" {
		return nil, apperrors.ErrUserNotFound
	}
	return s.readRepo.GetByUsername(ctx, q.Username)
}

func (s *UserQueryService) ListUsers(ctx context.Context, _ cqrs.ListUsersQuery) ([]models.User, error) {
	return s.readRepo.List(ctx)
}

func (s *UserQueryService) GetUserStats(ctx context.Context, q cqrs.GetUserStatsQuery) (*models.UserStatsView, error) {
	user, err := s.GetUser(ctx, cqrs.GetUserQuery{UserID: q.UserID})
	if err != nil {
		return nil, err
	}
	count, err := s.readRepo.MessageCount(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &models.UserStatsView{UserID: user.ID, MessageCount: count}, nil
}

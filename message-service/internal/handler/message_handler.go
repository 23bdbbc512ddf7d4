package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opaquechat/chat/shared/cqrs"
	"github.com/opaquechat/chat/shared/middleware"
	"github.com/opaquechat/chat/shared/models"
)

// MessageCommander defines the write-side operations used by MessageHandler.
type MessageCommander interface {
	CreateMessage(context.Context, cqrs.CreateMessageCommand) (*models.Message, error)
}

// MessageQuerier defines the read-side operations used by MessageHandler.
type MessageQuerier interface {
	ListRecentMessages(context.Context, cqrs.ListRecentMessagesQuery) ([]models.Message, error)
}

type MessageHandler struct {
	commands MessageCommander
	queries  MessageQuerier
}

type CreateMessageRequest struct {
	EncryptedContent string `json:"encryptedContent" validate:"required"`
	SenderUserID     string `json:"senderUserId" validate:"required"`
	RecipientUserID  string `json:"recipientUserId"`
}

func NewMessageHandler(commands MessageCommander, queries MessageQuerier) *MessageHandler {
	return &MessageHandler{commands: commands, queries: queries}
}

// Register mounts the /mensagens routes on r.
func (h *MessageHandler) Register(r gin.IRouter) {
	messages := r.Group("/mensagens")
	messages.POST("", h.CreateMessage)
	messages.GET("/ultimas", h.ListRecentMessages)
}

func (h *MessageHandler) CreateMessage(c *gin.Context) {
	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	message, err := h.commands.CreateMessage(c.Request.Context(), cqrs.CreateMessageCommand{
		EncryptedContent: req.EncryptedContent,
		SenderUserID:     req.SenderUserID,
		RecipientUserID:  req.RecipientUserID,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to create message")
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *MessageHandler) ListRecentMessages(c *gin.Context) {
	messages, err := h.queries.ListRecentMessages(c.Request.Context(), cqrs.ListRecentMessagesQuery{})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to list messages")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	c.JSON(http.StatusOK, messages)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opaquechat/chat/shared/cqrs"
	"github.com/opaquechat/chat/shared/middleware"
	"github.com/opaquechat/chat/shared/models"
)

// UserCommander defines the write-side operations used by UserHandler.
type UserCommander interface {
	CreateUser(context.Context, cqrs.CreateUserCommand) (*models.User, error)
}

// UserQuerier defines the read-side operations used by UserHandler.
type UserQuerier interface {
	GetUser(context.Context, cqrs.GetUserQuery) (*models.User, error)
	GetUserByUsername(context.Context, cqrs.GetUserByUsernameQuery) (*models.User, error)
	ListUsers(context.Context, cqrs.ListUsersQuery) ([]models.User, error)
	GetUserStats(context.Context, cqrs.GetUserStatsQuery) (*models.UserStatsView, error)
}

// UserHandler routes requests to the command or query service as appropriate.
type UserHandler struct {
	commands UserCommander
	queries  UserQuerier
}

type CreateUserRequest struct {
	Username  string `json:"username" validate:"required"`
	SecretKey string `json:"secretKey" validate:"required"`
	PublicKey string `json:"publicKey" validate:"required"`
}

func NewUserHandler(commands UserCommander, queries UserQuerier) *UserHandler {
	return &UserHandler{commands: commands, queries: queries}
}

// Register mounts the /users routes on r.
func (h *UserHandler) Register(r gin.IRouter) {
	users := r.Group("/users")
	users.POST("", h.CreateUser)
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.GET("/:id/stats", h.GetUserStats)
	users.GET("/username/:username", h.GetUserByUsername)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.commands.CreateUser(c.Request.Context(), cqrs.CreateUserCommand{
		Username:  req.Username,
		SecretKey: req.SecretKey,
		PublicKey: req.PublicKey,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.queries.GetUser(c.Request.Context(), cqrs.GetUserQuery{UserID: c.Param("id")})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUserByUsername(c *gin.Context) {
	user, err := h.queries.GetUserByUsername(c.Request.Context(), cqrs.GetUserByUsernameQuery{
		Username: c.Param("username"),
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.queries.ListUsers(c.Request.Context(), cqrs.ListUsersQuery{})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to list users")
		return
	}
	if users == nil {
		users = []models.User{}
	}

	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUserStats(c *gin.Context) {
	stats, err := h.queries.GetUserStats(c.Request.Context(), cqrs.GetUserStatsQuery{UserID: c.Param("id")})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to get user stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

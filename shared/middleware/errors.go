package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opaquechat/chat/shared/apperrors"
)

type ErrorResponse struct {
	Message string         `json:"message"`
	Code    apperrors.Code `json:"code,omitempty"`
}

func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{Message: message})
}

// StatusFor maps a domain error code to its HTTP status. A taken username
// is reported as 400, not 409; existing clients depend on it.
func StatusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeInvalidArgument, apperrors.CodeAlreadyExists:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithAppError writes err as a JSON error. Domain errors expose their
// own message; anything else is logged and answered with fallback.
func RespondWithAppError(c *gin.Context, err error, fallback string) {
	code := apperrors.CodeOf(err)
	status := StatusFor(code)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), fallback,
			"error", err,
			"request_id", GetRequestID(c),
		)
		_ = c.Error(err)
		RespondWithError(c, status, fallback)
		return
	}
	c.JSON(status, ErrorResponse{Message: apperrors.MessageOf(err), Code: code})
}

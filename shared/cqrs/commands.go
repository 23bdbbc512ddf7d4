package cqrs

import (
	"strings"

	"github.com/opaquechat/chat/shared/apperrors"
	"github.com/opaquechat/chat/shared/utils"
)

type CreateUserCommand struct {
	Username  string
	SecretKey string
	PublicKey string
}

// Validate reports the first missing or unusable field.
func (c CreateUserCommand) Validate() error {
	switch {
	case c.Username == "":
		return apperrors.ErrUsernameRequired
	case strings.Contains(c.Username, "/"):
		// GET /users/username/:username could never match it.
		return apperrors.ErrUsernameHasSlash
	case c.SecretKey == "":
		return apperrors.ErrSecretKeyRequired
	case c.PublicKey == "":
		return apperrors.ErrPublicKeyRequired
	}
	return nil
}

type CreateMessageCommand struct {
	EncryptedContent string
	SenderUserID     string
	RecipientUserID  string
}

// Validate checks required fields and id shape. The sender is not looked up.
func (c CreateMessageCommand) Validate() error {
	switch {
	case c.EncryptedContent == "":
		return apperrors.ErrContentRequired
	case c.SenderUserID == "":
		return apperrors.ErrSenderRequired
	case !utils.ValidateID(c.SenderUserID):
		return apperrors.ErrInvalidSenderUserID
	case c.RecipientUserID != "" && !utils.ValidateID(c.RecipientUserID):
		return apperrors.ErrInvalidRecipientUserID
	}
	return nil
}

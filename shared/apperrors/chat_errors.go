package apperrors

var (
	ErrUsernameTaken          = AlreadyExists("username already exists")
	ErrUserNotFound           = NotFound("user not found")
	ErrUsernameRequired       = InvalidArg("username is required")
	ErrUsernameHasSlash       = InvalidArg("username must not contain '/'")
	ErrSecretKeyRequired      = InvalidArg("secretKey is required")
	ErrPublicKeyRequired      = InvalidArg("publicKey is required")
	ErrContentRequired        = InvalidArg("encryptedContent is required")
	ErrSenderRequired         = InvalidArg("senderUserId is required")
	ErrInvalidSenderUserID    = InvalidArg("senderUserId must be a valid id")
	ErrInvalidRecipientUserID = InvalidArg("recipientUserId must be a valid id")
)

func ErrUsernameConflict(cause error) error {
	return Wrap(CodeAlreadyExists, "username already exists", cause)
}

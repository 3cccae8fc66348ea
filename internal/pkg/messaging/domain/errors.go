package messaging

import "errors"

// Domain-level errors for messaging behaviors
var (
	ErrValidation         = errors.New("messaging: invalid input")
	ErrThreadForbidden    = errors.New("messaging: user is not an active participant in the thread")
	ErrNotFound           = errors.New("messaging: referenced thread or message does not exist")
	ErrMessageEmpty       = errors.New("messaging: empty message (no text or attachments)")
	ErrMessageTooLong     = errors.New("messaging: message text exceeds the allowed length")
	ErrMessageRateLimited = errors.New("messaging: sender exceeded the send rate limit")
)

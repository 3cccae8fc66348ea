package repository

import (
	"context"
	"time"

	messaging "go-parley/internal/pkg/messaging/domain"
)

// MessageCursor is the keyset position for reverse-chronological paging:
// the (CreatedAt, ID) pair of the last message the caller has seen.
type MessageCursor struct {
	CreatedAt time.Time
	ID        int64
}

// MessageRepository defines persistence operations for the message log,
// attachment references and read receipts.
type MessageRepository interface {
	// CreateMessage inserts the message, its attachment rows and join rows,
	// and advances the owning thread's last_message_id / updated_at in one
	// transaction. When the message carries a dedupe key that already exists
	// in the thread, the previously stored message is returned and created is
	// false.
	CreateMessage(ctx context.Context, m messaging.Message) (stored messaging.Message, created bool, err error)

	// ListMessages returns up to limit messages of the thread strictly older
	// than the cursor (all newest-first when cursor is nil). System messages
	// are excluded unless includeSystem is set.
	ListMessages(ctx context.Context, threadID int64, cursor *MessageCursor, limit int, includeSystem bool) ([]messaging.Message, error)

	// MarkRead upserts one receipt per message of the thread with id <= upTo
	// (every message when upTo is nil) for userID. read_at never regresses.
	// Returns the number of messages touched.
	MarkRead(ctx context.Context, threadID int64, userID string, upTo *int64, at time.Time) (int64, error)

	// UnreadCount recomputes the derived unread counter: messages in the
	// user's active threads, sent by someone else, with no receipt from the
	// user.
	UnreadCount(ctx context.Context, userID string) (int, error)
}

package messaging

import "time"

// ReadReceipt is a per-user, per-message acknowledgment.
// Primary key: (MessageID, UserID). Upserts never move ReadAt backward.
type ReadReceipt struct {
	MessageID int64     `db:"message_id"`
	UserID    string    `db:"user_id"`
	ReadAt    time.Time `db:"read_at"`
}

package messaging

import "time"

// Thread is a conversation with a mutable-over-time set of participants.
// LastMessageID is a weak reference: it is advanced on every send but the
// canonical ordering always lives in the message log itself.
type Thread struct {
	ID            int64      `db:"id"`
	Title         *string    `db:"title"`
	IsGroup       bool       `db:"is_group"`
	Archived      bool       `db:"archived"`
	LastMessageID *int64     `db:"last_message_id"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// ThreadSummary is the per-user view of a thread as returned by list/get:
// the row itself plus everything derived for the viewing user.
type ThreadSummary struct {
	Thread       Thread
	LastMessage  *Message
	UnreadCount  int
	Participants []Participant
}

package messaging

import "time"

// Participant captures a (thread, user) membership record.
// Removal is soft: LeftAt is set, the row is never deleted.
// Primary key: (ThreadID, UserID) while active.
type Participant struct {
	ThreadID int64      `db:"thread_id"`
	UserID   string     `db:"user_id"`
	Role     string     `db:"role"`
	JoinedAt time.Time  `db:"joined_at"`
	LeftAt   *time.Time `db:"left_at"`
}

// Active reports whether the membership is in effect at the given instant.
func (p Participant) Active(at time.Time) bool {
	return p.LeftAt == nil || p.LeftAt.After(at)
}

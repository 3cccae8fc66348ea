package repository

import (
	"context"
	"time"

	messaging "go-parley/internal/pkg/messaging/domain"
)

// ThreadQuery narrows and pages a thread listing.
// Status is one of "", "all", "archived", "unread"; Search matches the title.
type ThreadQuery struct {
	Search string
	Status string
	Page   int
	Limit  int
}

// ThreadRepository defines persistence operations for threads and memberships.
// Implementations must run every mutation in a single transaction so a failure
// leaves no partial state.
type ThreadRepository interface {
	// CreateThread inserts the thread row and one participant row per member
	// atomically and returns the stored thread.
	CreateThread(ctx context.Context, title *string, isGroup bool, members []messaging.Participant) (messaging.Thread, error)

	// FindParticipant returns the active membership row for (threadID, userID),
	// or nil when the user is not an active participant.
	FindParticipant(ctx context.Context, threadID int64, userID string) (*messaging.Participant, error)

	// ListThreadSummaries returns one page of per-user thread views ordered by
	// most-recently-updated first, plus the total row count before paging.
	ListThreadSummaries(ctx context.Context, userID string, q ThreadQuery) ([]messaging.ThreadSummary, int, error)

	// GetThreadSummary returns the per-user view of a single thread.
	GetThreadSummary(ctx context.Context, threadID int64, userID string) (*messaging.ThreadSummary, error)

	// ArchiveStale marks threads with no activity since cutoff as archived and
	// reports how many rows changed.
	ArchiveStale(ctx context.Context, cutoff time.Time) (int64, error)
}

package usecase

import (
	"context"
	"fmt"

	messaging "go-parley/internal/pkg/messaging/domain"
	repository "go-parley/internal/pkg/messaging/persistence/repository/port"
)

// GetThreadInput identifies one thread view for one caller.
type GetThreadInput struct {
	ThreadID int64
	UserID   string
}

// GetThreadUseCase returns the caller-scoped view of a single thread,
// same shape as a listing entry.
type GetThreadUseCase struct {
	Threads repository.ThreadRepository
}

func NewGetThreadUseCase(threads repository.ThreadRepository) *GetThreadUseCase {
	return &GetThreadUseCase{Threads: threads}
}

func (uc *GetThreadUseCase) Execute(ctx context.Context, in GetThreadInput) (*messaging.ThreadSummary, error) {
	if _, err := ensureParticipant(ctx, uc.Threads, in.ThreadID, in.UserID); err != nil {
		return nil, err
	}

	summary, err := uc.Threads.GetThreadSummary(ctx, in.ThreadID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if summary == nil {
		return nil, messaging.ErrNotFound
	}
	return summary, nil
}

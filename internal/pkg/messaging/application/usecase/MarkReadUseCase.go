package usecase

import (
	"context"
	"fmt"
	"time"

	"go-parley/internal/pkg/messaging/application/notify"
	repository "go-parley/internal/pkg/messaging/persistence/repository/port"

	"go.uber.org/zap"
)

// MarkReadInput acknowledges messages of a thread up to a boundary id
// (every message when UpToMessageID is nil).
type MarkReadInput struct {
	ThreadID      int64
	UserID        string
	UpToMessageID *int64
}

// MarkReadOutput reports how many messages the call touched. Repeating the
// call with identical arguments reports the same count: receipts upsert and
// readAt never regresses.
type MarkReadOutput struct {
	UpdatedCount int64
}

// MarkReadUseCase bulk-upserts read receipts and fans the new read state out.
type MarkReadUseCase struct {
	Threads  repository.ThreadRepository
	Messages repository.MessageRepository
	Notifier *notify.Notifier
	Logger   *zap.Logger

	now func() time.Time
}

func NewMarkReadUseCase(threads repository.ThreadRepository, messages repository.MessageRepository, notifier *notify.Notifier, logger *zap.Logger) *MarkReadUseCase {
	return &MarkReadUseCase{
		Threads:  threads,
		Messages: messages,
		Notifier: notifier,
		Logger:   logger,
		now:      time.Now,
	}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) (*MarkReadOutput, error) {
	if _, err := ensureParticipant(ctx, uc.Threads, in.ThreadID, in.UserID); err != nil {
		return nil, err
	}

	updated, err := uc.Messages.MarkRead(ctx, in.ThreadID, in.UserID, in.UpToMessageID, uc.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if updated > 0 {
		uc.Notifier.ReadUpdated(in.ThreadID, in.UserID, in.UpToMessageID)
		count, err := uc.Messages.UnreadCount(ctx, in.UserID)
		if err != nil {
			uc.Logger.Warn("mark read fan-out: unread count", zap.String("user_id", in.UserID), zap.Error(err))
		} else {
			uc.Notifier.UnreadCount(in.UserID, count)
		}
	}

	return &MarkReadOutput{UpdatedCount: updated}, nil
}

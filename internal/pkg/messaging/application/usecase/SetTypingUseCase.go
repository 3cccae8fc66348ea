package usecase

import (
	"context"

	"go-parley/internal/pkg/messaging/application/notify"
	repository "go-parley/internal/pkg/messaging/persistence/repository/port"
	"go-parley/internal/pkg/messaging/presence"
)

// SetTypingInput toggles the caller's typing signal in a thread. on=true
// must be refreshed by repeated client pings while the user keeps typing.
type SetTypingInput struct {
	ThreadID int64
	UserID   string
	On       bool
}

// SetTypingUseCase updates ephemeral typing presence and broadcasts the
// resulting active list. Nothing here is persisted; a restart clears it.
type SetTypingUseCase struct {
	Threads  repository.ThreadRepository
	Presence *presence.Tracker
	Notifier *notify.Notifier
}

func NewSetTypingUseCase(threads repository.ThreadRepository, tracker *presence.Tracker, notifier *notify.Notifier) *SetTypingUseCase {
	return &SetTypingUseCase{Threads: threads, Presence: tracker, Notifier: notifier}
}

func (uc *SetTypingUseCase) Execute(ctx context.Context, in SetTypingInput) ([]string, error) {
	if _, err := ensureParticipant(ctx, uc.Threads, in.ThreadID, in.UserID); err != nil {
		return nil, err
	}

	active := uc.Presence.Set(in.ThreadID, in.UserID, in.On)
	uc.Notifier.Typing(in.ThreadID, in.UserID, in.On, active)
	return active, nil
}

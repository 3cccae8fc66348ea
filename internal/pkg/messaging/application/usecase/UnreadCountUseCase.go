package usecase

import (
	"context"
	"fmt"

	messaging "go-parley/internal/pkg/messaging/domain"
	repository "go-parley/internal/pkg/messaging/persistence/repository/port"
)

// UnreadCountUseCase recomputes the caller's unread badge from source data.
// The count is derived, never stored, so it cannot drift; it is an eventual
// snapshot, not linearizable with concurrent sends.
type UnreadCountUseCase struct {
	Messages repository.MessageRepository
}

func NewUnreadCountUseCase(messages repository.MessageRepository) *UnreadCountUseCase {
	return &UnreadCountUseCase{Messages: messages}
}

func (uc *UnreadCountUseCase) Execute(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", messaging.ErrValidation)
	}
	count, err := uc.Messages.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return count, nil
}

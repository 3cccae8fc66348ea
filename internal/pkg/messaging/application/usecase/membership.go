package usecase

import (
	"context"
	"fmt"

	messaging "go-parley/internal/pkg/messaging/domain"
	repository "go-parley/internal/pkg/messaging/persistence/repository/port"
)

// ensureParticipant is the universal guard: every thread operation resolves
// the caller's active membership row before doing anything else. No operation
// may bypass it.
func ensureParticipant(ctx context.Context, threads repository.ThreadRepository, threadID int64, userID string) (*messaging.Participant, error) {
	if threadID == 0 || userID == "" {
		return nil, fmt.Errorf("%w: thread id and user id are required", messaging.ErrValidation)
	}
	p, err := threads.FindParticipant(ctx, threadID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if p == nil {
		return nil, messaging.ErrThreadForbidden
	}
	return p, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"

	identityport "go-parley/internal/pkg/identity/port"
	messaging "go-parley/internal/pkg/messaging/domain"
	repository "go-parley/internal/pkg/messaging/persistence/repository/port"
)

// CreateThreadInput carries the required data to open a new thread.
// The actor is always part of the thread; ParticipantIDs may or may not
// repeat it.
type CreateThreadInput struct {
	ActorID          string
	ParticipantIDs   []string
	Title            *string
	IsGroup          bool
	FirstMessageText string
}

// CreateThreadOutput returns the actor-scoped thread view and, when a first
// message was supplied, the stored message.
type CreateThreadOutput struct {
	Thread  messaging.ThreadSummary
	Message *messaging.Message
}

// CreateThreadUseCase validates the member set against the identity provider,
// creates the thread with its participants atomically, and posts the opening
// message through the regular send path.
type CreateThreadUseCase struct {
	Threads   repository.ThreadRepository
	Directory identityport.Directory
	Send      *SendMessageUseCase
}

func NewCreateThreadUseCase(threads repository.ThreadRepository, directory identityport.Directory, send *SendMessageUseCase) *CreateThreadUseCase {
	return &CreateThreadUseCase{Threads: threads, Directory: directory, Send: send}
}

func (uc *CreateThreadUseCase) Execute(ctx context.Context, in CreateThreadInput) (*CreateThreadOutput, error) {
	if in.ActorID == "" {
		return nil, fmt.Errorf("%w: actor id is required", messaging.ErrValidation)
	}

	// Deduplicated member set, actor included.
	seen := map[string]struct{}{in.ActorID: {}}
	memberIDs := []string{in.ActorID}
	for _, id := range in.ParticipantIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		memberIDs = append(memberIDs, id)
	}
	if len(memberIDs) < 2 {
		return nil, fmt.Errorf("%w: a thread needs at least 2 distinct participants", messaging.ErrValidation)
	}

	// Role is denormalized from the identity provider at join time.
	members := make([]messaging.Participant, 0, len(memberIDs))
	for _, id := range memberIDs {
		u, err := uc.Directory.Resolve(ctx, id)
		if errors.Is(err, identityport.ErrUnknownUser) {
			return nil, fmt.Errorf("%w: participant %s", messaging.ErrNotFound, id)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		members = append(members, messaging.Participant{UserID: u.ID, Role: u.Role})
	}

	isGroup := in.IsGroup || len(members) > 2
	thread, err := uc.Threads.CreateThread(ctx, in.Title, isGroup, members)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	out := &CreateThreadOutput{}
	if in.FirstMessageText != "" {
		text := in.FirstMessageText
		msg, err := uc.Send.Execute(ctx, SendMessageInput{
			ThreadID: thread.ID,
			SenderID: in.ActorID,
			Text:     &text,
		})
		if err != nil {
			return nil, err
		}
		out.Message = msg
	}

	summary, err := uc.Threads.GetThreadSummary(ctx, thread.ID, in.ActorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if summary == nil {
		return nil, messaging.ErrNotFound
	}
	out.Thread = *summary
	return out, nil
}

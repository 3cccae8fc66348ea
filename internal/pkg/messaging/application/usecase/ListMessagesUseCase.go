package usecase

import (
	"context"
	"fmt"

	identityport "go-parley/internal/pkg/identity/port"
	messaging "go-parley/internal/pkg/messaging/domain"
	repository "go-parley/internal/pkg/messaging/persistence/repository/port"
)

// MaxPageSize caps one page of messages.
const MaxPageSize = 50

// ListMessagesInput pages through a thread's log, newest first.
type ListMessagesInput struct {
	ThreadID int64
	UserID   string
	Cursor   string
	Limit    int
}

// ListMessagesOutput is one page plus the token for the next older page
// (nil when the log is exhausted).
type ListMessagesOutput struct {
	Messages   []messaging.Message
	NextCursor *string
}

// ListMessagesUseCase reads the message log with keyset pagination on
// (createdAt, id); offset paging would skew under concurrent inserts.
// The role/kind visibility policy is applied here, at the single read
// boundary, not scattered through callers.
type ListMessagesUseCase struct {
	Threads   repository.ThreadRepository
	Messages  repository.MessageRepository
	Directory identityport.Directory
}

func NewListMessagesUseCase(threads repository.ThreadRepository, messages repository.MessageRepository, directory identityport.Directory) *ListMessagesUseCase {
	return &ListMessagesUseCase{Threads: threads, Messages: messages, Directory: directory}
}

func (uc *ListMessagesUseCase) Execute(ctx context.Context, in ListMessagesInput) (*ListMessagesOutput, error) {
	p, err := ensureParticipant(ctx, uc.Threads, in.ThreadID, in.UserID)
	if err != nil {
		return nil, err
	}

	cursor, err := DecodeCursor(in.Cursor)
	if err != nil {
		return nil, err
	}
	limit := in.Limit
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	includeSystem := messaging.VisibleTo(p.Role, messaging.MessageKindSystem)
	msgs, err := uc.Messages.ListMessages(ctx, in.ThreadID, cursor, limit, includeSystem)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.hydrateSenders(ctx, msgs)

	out := &ListMessagesOutput{Messages: msgs}
	if len(msgs) == limit {
		last := msgs[len(msgs)-1]
		token := EncodeCursor(repository.MessageCursor{CreatedAt: last.CreatedAt, ID: last.ID})
		out.NextCursor = &token
	}
	return out, nil
}

// hydrateSenders resolves display names best-effort, one lookup per distinct
// sender on the page. Unresolvable senders simply stay nameless.
func (uc *ListMessagesUseCase) hydrateSenders(ctx context.Context, msgs []messaging.Message) {
	names := make(map[string]string)
	for i := range msgs {
		senderID := msgs[i].SenderID
		name, ok := names[senderID]
		if !ok {
			if u, err := uc.Directory.Resolve(ctx, senderID); err == nil {
				name = u.DisplayName
			}
			names[senderID] = name
		}
		msgs[i].SenderName = name
	}
}

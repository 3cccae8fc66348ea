package usecase

import (
	"context"
	"fmt"

	identityport "go-parley/internal/pkg/identity/port"
	"go-parley/internal/pkg/messaging/application/notify"
	messaging "go-parley/internal/pkg/messaging/domain"
	repository "go-parley/internal/pkg/messaging/persistence/repository/port"

	"go.uber.org/zap"
)

// Limiter gates message sends per sender.
type Limiter interface {
	Allow(userID string) bool
}

// AttachmentInput references a blob already uploaded to the external store.
type AttachmentInput struct {
	Name       string
	Mime       string
	Size       int64
	StorageKey string
}

// SendMessageInput carries the data needed to send a new message.
type SendMessageInput struct {
	ThreadID    int64
	SenderID    string
	Text        *string
	Attachments []AttachmentInput
	DedupeKey   *string
}

// SendMessageUseCase persists a message and fans the resulting events out.
// Fan-out failures never fail the send; canonical state is the store.
type SendMessageUseCase struct {
	Threads   repository.ThreadRepository
	Messages  repository.MessageRepository
	Limiter   Limiter
	Directory identityport.Directory
	Notifier  *notify.Notifier
	Logger    *zap.Logger
}

func NewSendMessageUseCase(
	threads repository.ThreadRepository,
	messages repository.MessageRepository,
	limiter Limiter,
	directory identityport.Directory,
	notifier *notify.Notifier,
	logger *zap.Logger,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		Threads:   threads,
		Messages:  messages,
		Limiter:   limiter,
		Directory: directory,
		Notifier:  notifier,
		Logger:    logger,
	}
}

// Execute validates, rate-limits, persists and broadcasts a new message.
// The returned message is fully hydrated (sender identity, attachments,
// empty receipt list).
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*messaging.Message, error) {
	if _, err := ensureParticipant(ctx, uc.Threads, in.ThreadID, in.SenderID); err != nil {
		return nil, err
	}

	attachments := make([]messaging.Attachment, 0, len(in.Attachments))
	for _, a := range in.Attachments {
		if a.StorageKey == "" {
			return nil, fmt.Errorf("%w: attachment storage key is required", messaging.ErrValidation)
		}
		attachments = append(attachments, messaging.Attachment{
			UploaderID: in.SenderID,
			Name:       a.Name,
			Mime:       a.Mime,
			Size:       a.Size,
			StorageKey: a.StorageKey,
		})
	}

	msg, err := messaging.NewMessage(in.ThreadID, in.SenderID, in.Text, attachments, in.DedupeKey)
	if err != nil {
		return nil, err
	}

	if !uc.Limiter.Allow(in.SenderID) {
		return nil, messaging.ErrMessageRateLimited
	}

	stored, created, err := uc.Messages.CreateMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.hydrateSender(ctx, &stored)

	if created {
		uc.fanOut(ctx, stored)
	}
	return &stored, nil
}

// fanOut broadcasts message:new to the thread room and pushes thread:updated
// plus a fresh unread:count to every active participant's personal room, so
// users not currently viewing the thread still get an updated badge.
func (uc *SendMessageUseCase) fanOut(ctx context.Context, msg messaging.Message) {
	uc.Notifier.MessageNew(msg)

	summary, err := uc.Threads.GetThreadSummary(ctx, msg.ThreadID, msg.SenderID)
	if err != nil || summary == nil {
		uc.Logger.Warn("send fan-out: load participants", zap.Int64("thread_id", msg.ThreadID), zap.Error(err))
		return
	}
	for _, p := range summary.Participants {
		uc.Notifier.ThreadUpdated(p.UserID, msg)
		count, err := uc.Messages.UnreadCount(ctx, p.UserID)
		if err != nil {
			uc.Logger.Warn("send fan-out: unread count", zap.String("user_id", p.UserID), zap.Error(err))
			continue
		}
		uc.Notifier.UnreadCount(p.UserID, count)
	}
}

func (uc *SendMessageUseCase) hydrateSender(ctx context.Context, msg *messaging.Message) {
	u, err := uc.Directory.Resolve(ctx, msg.SenderID)
	if err != nil {
		// Identity is decorative on the read path; never fail the send for it.
		uc.Logger.Debug("send: resolve sender", zap.String("user_id", msg.SenderID), zap.Error(err))
		return
	}
	msg.SenderName = u.DisplayName
}

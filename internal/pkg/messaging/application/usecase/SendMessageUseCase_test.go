package usecase

import (
	"context"
	"strings"
	"testing"

	"go-parley/internal/infrastructure/realtime"
	messaging "go-parley/internal/pkg/messaging/domain"

	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	env := newTestEnv()
	thread := env.seedThread("homework", member("alice", "educator"), member("bob", messaging.RoleGuardian))
	uc := env.sendUseCase(allowAll{})

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ThreadID: thread.ID,
		SenderID: "carol",
		Text:     strptr("hi"),
	})
	require.ErrorIs(t, err, messaging.ErrThreadForbidden)
	require.Empty(t, env.store.messages)
}

func TestSendMessageRejectsEmptyAndOversizedText(t *testing.T) {
	env := newTestEnv()
	thread := env.seedThread("homework", member("alice", "educator"), member("bob", messaging.RoleGuardian))
	uc := env.sendUseCase(allowAll{})

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ThreadID: thread.ID,
		SenderID: "alice",
		Text:     strptr("   \n\t "),
	})
	require.ErrorIs(t, err, messaging.ErrMessageEmpty)

	_, err = uc.Execute(context.Background(), SendMessageInput{
		ThreadID: thread.ID,
		SenderID: "alice",
		Text:     strptr(strings.Repeat("x", messaging.MaxMessageLength+1)),
	})
	require.ErrorIs(t, err, messaging.ErrMessageTooLong)
	require.Empty(t, env.store.messages)
}

func TestSendMessageAttachmentOnly(t *testing.T) {
	env := newTestEnv()
	thread := env.seedThread("homework", member("alice", "educator"), member("bob", messaging.RoleGuardian))
	uc := env.sendUseCase(allowAll{})

	msg, err := uc.Execute(context.Background(), SendMessageInput{
		ThreadID: thread.ID,
		SenderID: "alice",
		Attachments: []AttachmentInput{
			{Name: "report.pdf", Mime: "application/pdf", Size: 1024, StorageKey: "blob/report"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, messaging.MessageKindAttachment, msg.Kind)
	require.Len(t, msg.Attachments, 1)
	require.Equal(t, "blob/report", msg.Attachments[0].StorageKey)

	_, err = uc.Execute(context.Background(), SendMessageInput{
		ThreadID:    thread.ID,
		SenderID:    "alice",
		Attachments: []AttachmentInput{{Name: "nokey.pdf"}},
	})
	require.ErrorIs(t, err, messaging.ErrValidation)
}

func TestSendMessageRateLimited(t *testing.T) {
	env := newTestEnv()
	thread := env.seedThread("homework", member("alice", "educator"), member("bob", messaging.RoleGuardian))
	uc := env.sendUseCase(denyAll{})

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ThreadID: thread.ID,
		SenderID: "alice",
		Text:     strptr("hello"),
	})
	require.ErrorIs(t, err, messaging.ErrMessageRateLimited)
	require.Empty(t, env.store.messages)
}

func TestSendMessageDedupeReturnsExisting(t *testing.T) {
	env := newTestEnv()
	thread := env.seedThread("homework", member("alice", "educator"), member("bob", messaging.RoleGuardian))
	uc := env.sendUseCase(allowAll{})
	room := env.attach("bob", realtime.ThreadRoom(thread.ID))

	in := SendMessageInput{
		ThreadID:  thread.ID,
		SenderID:  "alice",
		Text:      strptr("hello"),
		DedupeKey: strptr("client-retry-1"),
	}
	first, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Len(t, env.store.messages, 1)
	// The retry must not broadcast the message a second time.
	require.Len(t, room.events("message:new"), 1)
}

func TestSendMessageFanOut(t *testing.T) {
	env := newTestEnv()
	thread := env.seedThread("homework", member("alice", "educator"), member("bob", messaging.RoleGuardian))
	uc := env.sendUseCase(allowAll{})

	bobInThread := env.attach("bob", realtime.ThreadRoom(thread.ID))
	bobElsewhere := env.attach("bob")

	msg, err := uc.Execute(context.Background(), SendMessageInput{
		ThreadID: thread.ID,
		SenderID: "alice",
		Text:     strptr("hello"),
	})
	require.NoError(t, err)
	require.Equal(t, "Alice", msg.SenderName)

	newEvents := bobInThread.events("message:new")
	require.Len(t, newEvents, 1)
	payload := newEvents[0]["message"].(map[string]any)
	require.Equal(t, "hello", payload["text"])
	require.Equal(t, "alice", payload["sender_id"])

	// Personal-room events reach every session of the user, including ones
	// not joined to the thread room.
	for _, s := range []*fakeSession{bobInThread, bobElsewhere} {
		require.Len(t, s.events("thread:updated"), 1)
		counts := s.events("unread:count")
		require.Len(t, counts, 1)
		require.Equal(t, float64(1), counts[0]["count"])
	}
}

func TestSendMessagePersistenceFailure(t *testing.T) {
	env := newTestEnv()
	thread := env.seedThread("homework", member("alice", "educator"), member("bob", messaging.RoleGuardian))
	env.store.failCreateMessage = true
	uc := env.sendUseCase(allowAll{})
	room := env.attach("bob", realtime.ThreadRoom(thread.ID))

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ThreadID: thread.ID,
		SenderID: "alice",
		Text:     strptr("hello"),
	})
	require.ErrorIs(t, err, ErrPersistence)
	require.Empty(t, room.payloads)
	require.Empty(t, env.store.messages)
	require.Nil(t, env.store.threads[thread.ID].LastMessageID)
}

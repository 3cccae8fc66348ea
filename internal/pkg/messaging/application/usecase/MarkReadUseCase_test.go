package usecase

import (
	"context"
	"testing"

	"go-parley/internal/infrastructure/realtime"
	messaging "go-parley/internal/pkg/messaging/domain"

	"github.com/stretchr/testify/require"
)

func TestMarkReadRejectsNonParticipant(t *testing.T) {
	env := newTestEnv()
	thread := env.seedThread("homework", member("alice", "educator"), member("bob", messaging.RoleGuardian))
	uc := NewMarkReadUseCase(env.store, env.store, env.notifier, env.logger)

	_, err := uc.Execute(context.Background(), MarkReadInput{ThreadID: thread.ID, UserID: "carol"})
	require.ErrorIs(t, err, messaging.ErrThreadForbidden)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	env := newTestEnv()
	thread := env.seedThread("homework", member("alice", "educator"), member("bob", messaging.RoleGuardian))
	send := env.sendUseCase(allowAll{})
	for _, text := range []string{"one", "two"} {
		_, err := send.Execute(context.Background(), SendMessageInput{ThreadID: thread.ID, SenderID: "alice", Text: strptr(text)})
		require.NoError(t, err)
	}

	uc := NewMarkReadUseCase(env.store, env.store, env.notifier, env.logger)
	out, err := uc.Execute(context.Background(), MarkReadInput{ThreadID: thread.ID, UserID: "bob"})
	require.NoError(t, err)
	require.EqualValues(t, 2, out.UpdatedCount)

	again, err := uc.Execute(context.Background(), MarkReadInput{ThreadID: thread.ID, UserID: "bob"})
	require.NoError(t, err)
	require.EqualValues(t, 2, again.UpdatedCount)

	unread, err := env.store.UnreadCount(context.Background(), "bob")
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestMarkReadHonorsUpToBoundary(t *testing.T) {
	env := newTestEnv()
	thread := env.seedThread("homework", member("alice", "educator"), member("bob", messaging.RoleGuardian))
	send := env.sendUseCase(allowAll{})
	first, err := send.Execute(context.Background(), SendMessageInput{ThreadID: thread.ID, SenderID: "alice", Text: strptr("one")})
	require.NoError(t, err)
	_, err = send.Execute(context.Background(), SendMessageInput{ThreadID: thread.ID, SenderID: "alice", Text: strptr("two")})
	require.NoError(t, err)

	uc := NewMarkReadUseCase(env.store, env.store, env.notifier, env.logger)
	out, err := uc.Execute(context.Background(), MarkReadInput{ThreadID: thread.ID, UserID: "bob", UpToMessageID: &first.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, out.UpdatedCount)

	unread, err := env.store.UnreadCount(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, 1, unread)
}

func TestMarkReadFanOutOnlyWhenSomethingChanged(t *testing.T) {
	env := newTestEnv()
	thread := env.seedThread("homework", member("alice", "educator"), member("bob", messaging.RoleGuardian))
	room := env.attach("alice", realtime.ThreadRoom(thread.ID))
	uc := NewMarkReadUseCase(env.store, env.store, env.notifier, env.logger)

	// Empty thread: nothing to acknowledge, nothing broadcast.
	out, err := uc.Execute(context.Background(), MarkReadInput{ThreadID: thread.ID, UserID: "bob"})
	require.NoError(t, err)
	require.Zero(t, out.UpdatedCount)
	require.Empty(t, room.events("read:updated"))

	send := env.sendUseCase(allowAll{})
	_, err = send.Execute(context.Background(), SendMessageInput{ThreadID: thread.ID, SenderID: "alice", Text: strptr("hello")})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), MarkReadInput{ThreadID: thread.ID, UserID: "bob"})
	require.NoError(t, err)
	events := room.events("read:updated")
	require.Len(t, events, 1)
	require.Equal(t, "bob", events[0]["user_id"])
}

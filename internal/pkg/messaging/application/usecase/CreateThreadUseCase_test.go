package usecase

import (
	"context"
	"testing"

	messaging "go-parley/internal/pkg/messaging/domain"

	"github.com/stretchr/testify/require"
)

func newCreateThreadUseCase(env *testEnv) *CreateThreadUseCase {
	return NewCreateThreadUseCase(env.store, env.directory, env.sendUseCase(allowAll{}))
}

func TestCreateThreadRequiresTwoDistinctParticipants(t *testing.T) {
	env := newTestEnv()
	uc := newCreateThreadUseCase(env)

	_, err := uc.Execute(context.Background(), CreateThreadInput{
		ActorID:        "alice",
		ParticipantIDs: []string{"alice", "alice", ""},
	})
	require.ErrorIs(t, err, messaging.ErrValidation)
}

func TestCreateThreadRejectsUnknownParticipant(t *testing.T) {
	env := newTestEnv()
	uc := newCreateThreadUseCase(env)

	_, err := uc.Execute(context.Background(), CreateThreadInput{
		ActorID:        "alice",
		ParticipantIDs: []string{"nobody"},
	})
	require.ErrorIs(t, err, messaging.ErrNotFound)
	require.Empty(t, env.store.threads)
}

func TestCreateThreadWithFirstMessage(t *testing.T) {
	env := newTestEnv()
	uc := newCreateThreadUseCase(env)

	title := "field trip"
	out, err := uc.Execute(context.Background(), CreateThreadInput{
		ActorID:          "alice",
		ParticipantIDs:   []string{"bob"},
		Title:            &title,
		FirstMessageText: "hello",
	})
	require.NoError(t, err)
	require.False(t, out.Thread.Thread.IsGroup)
	require.Len(t, out.Thread.Participants, 2)
	require.NotNil(t, out.Message)
	require.Equal(t, "hello", *out.Message.Text)
	require.NotNil(t, out.Thread.LastMessage)
	require.Equal(t, out.Message.ID, out.Thread.LastMessage.ID)

	// Roles are denormalized onto the membership rows at join time.
	roles := map[string]string{}
	for _, p := range out.Thread.Participants {
		roles[p.UserID] = p.Role
	}
	require.Equal(t, "educator", roles["alice"])
	require.Equal(t, messaging.RoleGuardian, roles["bob"])
}

func TestCreateThreadGroupFlag(t *testing.T) {
	env := newTestEnv()
	uc := newCreateThreadUseCase(env)

	out, err := uc.Execute(context.Background(), CreateThreadInput{
		ActorID:        "alice",
		ParticipantIDs: []string{"bob", "carol"},
	})
	require.NoError(t, err)
	require.True(t, out.Thread.Thread.IsGroup)
	require.Nil(t, out.Message)
}

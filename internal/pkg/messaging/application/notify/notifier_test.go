package notify

import (
	"encoding/json"
	"testing"
	"time"

	"go-parley/internal/infrastructure/realtime"
	messaging "go-parley/internal/pkg/messaging/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSession struct {
	id       string
	userID   string
	payloads [][]byte
}

func (f *fakeSession) SessionID() string             { return f.id }
func (f *fakeSession) UserID() string                { return f.userID }
func (f *fakeSession) Send(p []byte) error           { f.payloads = append(f.payloads, p); return nil }
func (f *fakeSession) Close(code int, reason string) {}

func decode(t *testing.T, payload []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(payload, &m))
	return m
}

func setup() (*Notifier, *realtime.Router) {
	router := realtime.NewRouter()
	return NewNotifier(router, zap.NewNop()), router
}

func TestMessageNewGoesToThreadRoom(t *testing.T) {
	n, router := setup()
	viewer := &fakeSession{id: "s1", userID: "bob"}
	outsider := &fakeSession{id: "s2", userID: "carol"}
	router.Attach(viewer)
	router.Attach(outsider)
	router.Join(realtime.ThreadRoom(7), viewer)

	text := "hello"
	n.MessageNew(messaging.Message{
		ID:        101,
		ThreadID:  7,
		SenderID:  "alice",
		Kind:      messaging.MessageKindText,
		Text:      &text,
		CreatedAt: time.Now(),
	})

	require.Len(t, viewer.payloads, 1)
	require.Empty(t, outsider.payloads)

	event := decode(t, viewer.payloads[0])
	require.Equal(t, EventMessageNew, event["type"])
	require.EqualValues(t, 7, event["thread_id"])
	msg := event["message"].(map[string]any)
	require.EqualValues(t, 101, msg["id"])
	require.Equal(t, "hello", msg["text"])
}

func TestUnreadCountGoesToPersonalRoomOnly(t *testing.T) {
	n, router := setup()
	phone := &fakeSession{id: "s1", userID: "bob"}
	laptop := &fakeSession{id: "s2", userID: "bob"}
	other := &fakeSession{id: "s3", userID: "carol"}
	for _, s := range []*fakeSession{phone, laptop, other} {
		router.Attach(s)
	}

	n.UnreadCount("bob", 3)

	require.Len(t, phone.payloads, 1)
	require.Len(t, laptop.payloads, 1)
	require.Empty(t, other.payloads)
	require.EqualValues(t, 3, decode(t, phone.payloads[0])["count"])
}

func TestTypingCarriesActiveList(t *testing.T) {
	n, router := setup()
	viewer := &fakeSession{id: "s1", userID: "bob"}
	router.Attach(viewer)
	router.Join(realtime.ThreadRoom(7), viewer)

	n.Typing(7, "alice", true, []string{"alice"})

	event := decode(t, viewer.payloads[0])
	require.Equal(t, EventTyping, event["type"])
	require.Equal(t, true, event["on"])
	require.Equal(t, []any{"alice"}, event["active"])
}

func TestReadUpdatedGoesToThreadRoom(t *testing.T) {
	n, router := setup()
	viewer := &fakeSession{id: "s1", userID: "alice"}
	router.Attach(viewer)
	router.Join(realtime.ThreadRoom(7), viewer)

	upTo := int64(101)
	n.ReadUpdated(7, "bob", &upTo)

	event := decode(t, viewer.payloads[0])
	require.Equal(t, EventReadUpdated, event["type"])
	require.Equal(t, "bob", event["user_id"])
	require.EqualValues(t, 101, event["up_to_message_id"])
}

func TestNoSessionsIsANoOp(t *testing.T) {
	n, _ := setup()
	n.UnreadCount("ghost", 1)
	n.Typing(1, "ghost", false, []string{})
}

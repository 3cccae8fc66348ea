// Package notify fans state-change events out to connected sessions.
// It is fire-and-forget by contract: a fan-out failure must never fail the
// mutation that triggered it, so every error ends as a log line.
package notify

import (
	"encoding/json"

	"go-parley/internal/infrastructure/realtime"
	messaging "go-parley/internal/pkg/messaging/domain"

	"go.uber.org/zap"
)

// Notifier broadcasts messaging events to thread rooms and personal rooms.
type Notifier struct {
	router *realtime.Router
	logger *zap.Logger
}

func NewNotifier(router *realtime.Router, logger *zap.Logger) *Notifier {
	return &Notifier{router: router, logger: logger}
}

// MessageNew announces a freshly persisted message to the thread room.
func (n *Notifier) MessageNew(msg messaging.Message) {
	payload, ok := n.marshal(messageNewEvent{
		Type:     EventMessageNew,
		ThreadID: msg.ThreadID,
		Message:  toMessageBody(msg),
	})
	if !ok {
		return
	}
	n.router.Broadcast(realtime.ThreadRoom(msg.ThreadID), payload, "")
}

// ThreadUpdated pushes the new last message to one participant's personal
// room, so users not currently viewing the thread still see the change.
func (n *Notifier) ThreadUpdated(userID string, msg messaging.Message) {
	payload, ok := n.marshal(threadUpdatedEvent{
		Type:        EventThreadUpdated,
		ThreadID:    msg.ThreadID,
		LastMessage: toMessageBody(msg),
		UpdatedAt:   msg.CreatedAt,
	})
	if !ok {
		return
	}
	n.router.NotifyUser(userID, payload)
}

// UnreadCount pushes a fresh badge value to the user's personal room.
func (n *Notifier) UnreadCount(userID string, count int) {
	payload, ok := n.marshal(unreadCountEvent{Type: EventUnreadCount, Count: count})
	if !ok {
		return
	}
	n.router.NotifyUser(userID, payload)
}

// Typing announces a typing state change plus the full active list to the
// thread room.
func (n *Notifier) Typing(threadID int64, userID string, on bool, active []string) {
	payload, ok := n.marshal(typingEvent{
		Type:     EventTyping,
		ThreadID: threadID,
		UserID:   userID,
		On:       on,
		Active:   active,
	})
	if !ok {
		return
	}
	n.router.Broadcast(realtime.ThreadRoom(threadID), payload, "")
}

// ReadUpdated announces advanced read state to the thread room.
func (n *Notifier) ReadUpdated(threadID int64, userID string, upTo *int64) {
	payload, ok := n.marshal(readUpdatedEvent{
		Type:          EventReadUpdated,
		ThreadID:      threadID,
		UserID:        userID,
		UpToMessageID: upTo,
	})
	if !ok {
		return
	}
	n.router.Broadcast(realtime.ThreadRoom(threadID), payload, "")
}

func (n *Notifier) marshal(event any) ([]byte, bool) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("notify: encode event", zap.Error(err))
		return nil, false
	}
	return payload, true
}

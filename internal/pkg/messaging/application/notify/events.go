package notify

import (
	"time"

	messaging "go-parley/internal/pkg/messaging/domain"
)

// Push event types. Delivery is best-effort and at-most-once per connected
// session; disconnected clients reconcile by re-fetching.
const (
	EventMessageNew    = "message:new"
	EventThreadUpdated = "thread:updated"
	EventUnreadCount   = "unread:count"
	EventTyping        = "typing"
	EventReadUpdated   = "read:updated"
)

type messageNewEvent struct {
	Type     string      `json:"type"`
	ThreadID int64       `json:"thread_id"`
	Message  messageBody `json:"message"`
}

type threadUpdatedEvent struct {
	Type        string      `json:"type"`
	ThreadID    int64       `json:"thread_id"`
	LastMessage messageBody `json:"last_message"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type unreadCountEvent struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type typingEvent struct {
	Type     string   `json:"type"`
	ThreadID int64    `json:"thread_id"`
	UserID   string   `json:"user_id"`
	On       bool     `json:"on"`
	Active   []string `json:"active"`
}

type readUpdatedEvent struct {
	Type          string `json:"type"`
	ThreadID      int64  `json:"thread_id"`
	UserID        string `json:"user_id"`
	UpToMessageID *int64 `json:"up_to_message_id,omitempty"`
}

type messageBody struct {
	ID          int64            `json:"id"`
	ThreadID    int64            `json:"thread_id"`
	SenderID    string           `json:"sender_id"`
	SenderName  string           `json:"sender_name,omitempty"`
	Kind        string           `json:"kind"`
	Text        *string          `json:"text,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	Attachments []attachmentBody `json:"attachments"`
}

type attachmentBody struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Mime       string `json:"mime"`
	Size       int64  `json:"size"`
	StorageKey string `json:"storage_key"`
}

func toMessageBody(m messaging.Message) messageBody {
	attachments := make([]attachmentBody, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, attachmentBody{
			ID:         a.ID,
			Name:       a.Name,
			Mime:       a.Mime,
			Size:       a.Size,
			StorageKey: a.StorageKey,
		})
	}
	return messageBody{
		ID:          m.ID,
		ThreadID:    m.ThreadID,
		SenderID:    m.SenderID,
		SenderName:  m.SenderName,
		Kind:        string(m.Kind),
		Text:        m.Text,
		CreatedAt:   m.CreatedAt,
		Attachments: attachments,
	}
}

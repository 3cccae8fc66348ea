package controller

import (
	"time"

	messaging "go-parley/internal/pkg/messaging/domain"
)

// View DTOs decouple the HTTP surface from the domain structs so the wire
// format can evolve without touching persistence tags.

type threadView struct {
	ID           int64             `json:"id"`
	Title        *string           `json:"title,omitempty"`
	IsGroup      bool              `json:"is_group"`
	Archived     bool              `json:"archived"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	UnreadCount  int               `json:"unread_count"`
	Participants []participantView `json:"participants"`
	LastMessage  *messageView      `json:"last_message,omitempty"`
}

type participantView struct {
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type messageView struct {
	ID          int64            `json:"id"`
	ThreadID    int64            `json:"thread_id"`
	SenderID    string           `json:"sender_id"`
	SenderName  string           `json:"sender_name,omitempty"`
	Kind        string           `json:"kind"`
	Text        *string          `json:"text,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	Attachments []attachmentView `json:"attachments"`
	ReadBy      []receiptView    `json:"read_by,omitempty"`
}

type attachmentView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Mime       string `json:"mime"`
	Size       int64  `json:"size"`
	StorageKey string `json:"storage_key"`
}

type receiptView struct {
	UserID string    `json:"user_id"`
	ReadAt time.Time `json:"read_at"`
}

func toThreadView(s messaging.ThreadSummary) threadView {
	participants := make([]participantView, 0, len(s.Participants))
	for _, p := range s.Participants {
		participants = append(participants, participantView{UserID: p.UserID, Role: p.Role, JoinedAt: p.JoinedAt})
	}
	v := threadView{
		ID:           s.Thread.ID,
		Title:        s.Thread.Title,
		IsGroup:      s.Thread.IsGroup,
		Archived:     s.Thread.Archived,
		CreatedAt:    s.Thread.CreatedAt,
		UpdatedAt:    s.Thread.UpdatedAt,
		UnreadCount:  s.UnreadCount,
		Participants: participants,
	}
	if s.LastMessage != nil {
		m := toMessageView(*s.LastMessage)
		v.LastMessage = &m
	}
	return v
}

func toMessageView(m messaging.Message) messageView {
	attachments := make([]attachmentView, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, attachmentView{ID: a.ID, Name: a.Name, Mime: a.Mime, Size: a.Size, StorageKey: a.StorageKey})
	}
	var readBy []receiptView
	for _, r := range m.Receipts {
		readBy = append(readBy, receiptView{UserID: r.UserID, ReadAt: r.ReadAt})
	}
	return messageView{
		ID:          m.ID,
		ThreadID:    m.ThreadID,
		SenderID:    m.SenderID,
		SenderName:  m.SenderName,
		Kind:        string(m.Kind),
		Text:        m.Text,
		CreatedAt:   m.CreatedAt,
		Attachments: attachments,
		ReadBy:      readBy,
	}
}

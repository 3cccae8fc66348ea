package messaging

import (
	"strings"
	"time"
)

// MessageKind represents the kind of message content.
type MessageKind string

const (
	MessageKindText       MessageKind = "text"
	MessageKindAttachment MessageKind = "attachment"
	MessageKindSystem     MessageKind = "system"
)

// MaxMessageLength caps the text of a single message.
const MaxMessageLength = 2000

// Message is an immutable log entry in a thread.
// Ordering key within a thread is (CreatedAt, ID) as assigned at insert time.
type Message struct {
	ID        int64       `db:"id"`
	ThreadID  int64       `db:"thread_id"`
	SenderID  string      `db:"sender_id"`
	Kind      MessageKind `db:"kind"`
	Text      *string     `db:"text"`
	DedupeKey *string     `db:"dedupe_key"`
	CreatedAt time.Time   `db:"created_at"`

	// Hydrated on read; never written through this struct.
	SenderName  string        `db:"-"`
	Attachments []Attachment  `db:"-"`
	Receipts    []ReadReceipt `db:"-"`
}

// NewMessage validates and normalizes a message prior to persistence.
// Kind is derived: attachment-only payloads become MessageKindAttachment,
// anything else with text is MessageKindText. System messages are minted by
// the server and bypass this constructor.
func NewMessage(threadID int64, senderID string, text *string, attachments []Attachment, dedupeKey *string) (*Message, error) {
	if threadID == 0 || senderID == "" {
		return nil, ErrValidation
	}

	if text != nil {
		trimmed := strings.TrimSpace(*text)
		if trimmed == "" {
			text = nil
		} else {
			text = &trimmed
		}
	}

	if text == nil && len(attachments) == 0 {
		return nil, ErrMessageEmpty
	}
	if text != nil && len([]rune(*text)) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	kind := MessageKindText
	if text == nil {
		kind = MessageKindAttachment
	}

	return &Message{
		ThreadID:    threadID,
		SenderID:    senderID,
		Kind:        kind,
		Text:        text,
		DedupeKey:   dedupeKey,
		Attachments: attachments,
	}, nil
}

package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	messaging "go-parley/internal/pkg/messaging/domain"
	repository "go-parley/internal/pkg/messaging/persistence/repository/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

var _ repository.MessageRepository = (*PgMessageRepository)(nil)

func (r *PgMessageRepository) CreateMessage(ctx context.Context, m messaging.Message) (messaging.Message, bool, error) {
	if r == nil || r.pool == nil {
		return messaging.Message{}, false, errors.New("PgMessageRepository: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return messaging.Message{}, false, fmt.Errorf("message repo: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (thread_id, sender_id, kind, text, dedupe_key, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (thread_id, dedupe_key) WHERE dedupe_key IS NOT NULL DO NOTHING
		RETURNING id, created_at
	`, m.ThreadID, m.SenderID, m.Kind, m.Text, m.DedupeKey).Scan(&m.ID, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Client retry: the dedupe key already landed. Hand back the stored row.
		existing, ferr := r.findByDedupeKey(ctx, m.ThreadID, *m.DedupeKey)
		if ferr != nil {
			return messaging.Message{}, false, ferr
		}
		return *existing, false, nil
	}
	if err != nil {
		return messaging.Message{}, false, fmt.Errorf("message repo: insert message: %w", err)
	}

	for i := range m.Attachments {
		a := &m.Attachments[i]
		err = tx.QueryRow(ctx, `
			INSERT INTO attachments (uploader_id, name, mime, size, storage_key)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, a.UploaderID, a.Name, a.Mime, a.Size, a.StorageKey).Scan(&a.ID)
		if err != nil {
			return messaging.Message{}, false, fmt.Errorf("message repo: insert attachment: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO message_attachments (message_id, attachment_id)
			VALUES ($1, $2)
		`, m.ID, a.ID)
		if err != nil {
			return messaging.Message{}, false, fmt.Errorf("message repo: link attachment: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE threads SET last_message_id = $2, updated_at = $3 WHERE id = $1
	`, m.ThreadID, m.ID, m.CreatedAt)
	if err != nil {
		return messaging.Message{}, false, fmt.Errorf("message repo: bump thread: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return messaging.Message{}, false, fmt.Errorf("message repo: commit: %w", err)
	}

	m.Receipts = []messaging.ReadReceipt{}
	return m, true, nil
}

func (r *PgMessageRepository) findByDedupeKey(ctx context.Context, threadID int64, key string) (*messaging.Message, error) {
	var m messaging.Message
	err := r.pool.QueryRow(ctx, `
		SELECT id, thread_id, sender_id, kind, text, dedupe_key, created_at
		FROM messages
		WHERE thread_id = $1 AND dedupe_key = $2
	`, threadID, key).Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Kind, &m.Text, &m.DedupeKey, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("message repo: dedupe lookup: %w", err)
	}
	if err := r.attachTo(ctx, []*messaging.Message{&m}); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgMessageRepository) ListMessages(ctx context.Context, threadID int64, cursor *repository.MessageCursor, limit int, includeSystem bool) ([]messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	query := `
		SELECT id, thread_id, sender_id, kind, text, dedupe_key, created_at
		FROM messages
		WHERE thread_id = $1
	`
	args := []any{threadID}
	if !includeSystem {
		query += ` AND kind <> 'system'`
	}
	if cursor != nil {
		query += fmt.Sprintf(` AND (created_at, id) < ($%d, $%d)`, len(args)+1, len(args)+2)
		args = append(args, cursor.CreatedAt, cursor.ID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("message repo: list: %w", err)
	}
	defer rows.Close()

	msgs := make([]messaging.Message, 0, limit)
	for rows.Next() {
		var m messaging.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Kind, &m.Text, &m.DedupeKey, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("message repo: scan: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*messaging.Message, len(msgs))
	for i := range msgs {
		refs[i] = &msgs[i]
	}
	if err := r.attachTo(ctx, refs); err != nil {
		return nil, err
	}
	if err := r.receiptsTo(ctx, refs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *PgMessageRepository) MarkRead(ctx context.Context, threadID int64, userID string, upTo *int64, at time.Time) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessageRepository: nil pool")
	}

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO read_receipts (message_id, user_id, read_at)
		SELECT m.id, $2, $3
		FROM messages m
		WHERE m.thread_id = $1 AND ($4::bigint IS NULL OR m.id <= $4)
		ON CONFLICT (message_id, user_id)
		DO UPDATE SET read_at = GREATEST(read_receipts.read_at, EXCLUDED.read_at)
	`, threadID, userID, at, upTo)
	if err != nil {
		return 0, fmt.Errorf("message repo: mark read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgMessageRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessageRepository: nil pool")
	}

	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM messages m
		JOIN participants p ON p.thread_id = m.thread_id
			AND p.user_id = $1
			AND (p.left_at IS NULL OR p.left_at > now())
		WHERE m.sender_id <> $1
		  AND NOT EXISTS (SELECT 1 FROM read_receipts rr WHERE rr.message_id = m.id AND rr.user_id = $1)
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("message repo: unread count: %w", err)
	}
	return count, nil
}

// attachTo loads attachment references for the given messages in one query.
func (r *PgMessageRepository) attachTo(ctx context.Context, msgs []*messaging.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(msgs))
	byID := make(map[int64]*messaging.Message, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
		byID[m.ID] = m
		m.Attachments = []messaging.Attachment{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT ma.message_id, a.id, a.uploader_id, a.name, a.mime, a.size, a.storage_key
		FROM message_attachments ma
		JOIN attachments a ON a.id = ma.attachment_id
		WHERE ma.message_id = ANY($1)
		ORDER BY a.id
	`, ids)
	if err != nil {
		return fmt.Errorf("message repo: attachments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msgID int64
		var a messaging.Attachment
		if err := rows.Scan(&msgID, &a.ID, &a.UploaderID, &a.Name, &a.Mime, &a.Size, &a.StorageKey); err != nil {
			return err
		}
		if m := byID[msgID]; m != nil {
			m.Attachments = append(m.Attachments, a)
		}
	}
	return rows.Err()
}

// receiptsTo loads read receipts for the given messages in one query.
func (r *PgMessageRepository) receiptsTo(ctx context.Context, msgs []*messaging.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(msgs))
	byID := make(map[int64]*messaging.Message, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
		byID[m.ID] = m
		m.Receipts = []messaging.ReadReceipt{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT message_id, user_id, read_at
		FROM read_receipts
		WHERE message_id = ANY($1)
		ORDER BY read_at
	`, ids)
	if err != nil {
		return fmt.Errorf("message repo: receipts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rr messaging.ReadReceipt
		if err := rows.Scan(&rr.MessageID, &rr.UserID, &rr.ReadAt); err != nil {
			return err
		}
		if m := byID[rr.MessageID]; m != nil {
			m.Receipts = append(m.Receipts, rr)
		}
	}
	return rows.Err()
}

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

type PgThreadRepository struct {
	pool *pgxpool.Pool
}

func NewPgThreadRepository(pool *pgxpool.Pool) *PgThreadRepository {
	return &PgThreadRepository{pool: pool}
}

var _ repository.ThreadRepository = (*PgThreadRepository)(nil)

func (r *PgThreadRepository) CreateThread(ctx context.Context, title *string, isGroup bool, members []messaging.Participant) (messaging.Thread, error) {
	if r == nil || r.pool == nil {
		return messaging.Thread{}, errors.New("PgThreadRepository: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return messaging.Thread{}, fmt.Errorf("thread repo: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var t messaging.Thread
	err = tx.QueryRow(ctx, `
		INSERT INTO threads (title, is_group, archived, created_at, updated_at)
		VALUES ($1, $2, FALSE, now(), now())
		RETURNING id, title, is_group, archived, last_message_id, created_at, updated_at
	`, title, isGroup).Scan(&t.ID, &t.Title, &t.IsGroup, &t.Archived, &t.LastMessageID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return messaging.Thread{}, fmt.Errorf("thread repo: insert thread: %w", err)
	}

	for _, m := range members {
		_, err = tx.Exec(ctx, `
			INSERT INTO participants (thread_id, user_id, role, joined_at)
			VALUES ($1, $2, $3, $4)
		`, t.ID, m.UserID, m.Role, t.CreatedAt)
		if err != nil {
			return messaging.Thread{}, fmt.Errorf("thread repo: insert participant: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return messaging.Thread{}, fmt.Errorf("thread repo: commit: %w", err)
	}
	return t, nil
}

func (r *PgThreadRepository) FindParticipant(ctx context.Context, threadID int64, userID string) (*messaging.Participant, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgThreadRepository: nil pool")
	}

	var p messaging.Participant
	err := r.pool.QueryRow(ctx, `
		SELECT thread_id, user_id, role, joined_at, left_at
		FROM participants
		WHERE thread_id = $1 AND user_id = $2 AND (left_at IS NULL OR left_at > now())
	`, threadID, userID).Scan(&p.ThreadID, &p.UserID, &p.Role, &p.JoinedAt, &p.LeftAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// summaryRow is the flat shape produced by the listing query before the
// participant and last-message hydration passes.
type summaryRow struct {
	thread messaging.Thread
	unread int
}

func (r *PgThreadRepository) ListThreadSummaries(ctx context.Context, userID string, q repository.ThreadQuery) ([]messaging.ThreadSummary, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, errors.New("PgThreadRepository: nil pool")
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	archivedOnly := q.Status == "archived"

	const membership = `
		FROM threads t
		JOIN participants p ON p.thread_id = t.id
			AND p.user_id = $1
			AND (p.left_at IS NULL OR p.left_at > now())
		WHERE ($2 = '' OR t.title ILIKE '%' || $2 || '%')
		  AND (NOT $3::boolean OR t.archived)
	`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) `+membership, userID, q.Search, archivedOnly).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("thread repo: count: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.title, t.is_group, t.archived, t.last_message_id, t.created_at, t.updated_at,
		       (SELECT COUNT(*)
		          FROM messages m
		         WHERE m.thread_id = t.id
		           AND m.sender_id <> $1
		           AND NOT EXISTS (SELECT 1 FROM read_receipts rr WHERE rr.message_id = m.id AND rr.user_id = $1)
		       ) AS unread
	`+membership+`
		ORDER BY t.updated_at DESC, t.id DESC
		LIMIT $4 OFFSET $5
	`, userID, q.Search, archivedOnly, q.Limit, (q.Page-1)*q.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("thread repo: list: %w", err)
	}
	defer rows.Close()

	var page []summaryRow
	for rows.Next() {
		var sr summaryRow
		t := &sr.thread
		if err := rows.Scan(&t.ID, &t.Title, &t.IsGroup, &t.Archived, &t.LastMessageID, &t.CreatedAt, &t.UpdatedAt, &sr.unread); err != nil {
			return nil, 0, fmt.Errorf("thread repo: scan: %w", err)
		}
		page = append(page, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	summaries, err := r.hydrate(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *PgThreadRepository) GetThreadSummary(ctx context.Context, threadID int64, userID string) (*messaging.ThreadSummary, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgThreadRepository: nil pool")
	}

	var sr summaryRow
	t := &sr.thread
	err := r.pool.QueryRow(ctx, `
		SELECT t.id, t.title, t.is_group, t.archived, t.last_message_id, t.created_at, t.updated_at,
		       (SELECT COUNT(*)
		          FROM messages m
		         WHERE m.thread_id = t.id
		           AND m.sender_id <> $2
		           AND NOT EXISTS (SELECT 1 FROM read_receipts rr WHERE rr.message_id = m.id AND rr.user_id = $2)
		       ) AS unread
		FROM threads t
		WHERE t.id = $1
	`, threadID, userID).Scan(&t.ID, &t.Title, &t.IsGroup, &t.Archived, &t.LastMessageID, &t.CreatedAt, &t.UpdatedAt, &sr.unread)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	summaries, err := r.hydrate(ctx, []summaryRow{sr})
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

func (r *PgThreadRepository) ArchiveStale(ctx context.Context, cutoff time.Time) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgThreadRepository: nil pool")
	}
	tag, err := r.pool.Exec(ctx, `UPDATE threads SET archived = TRUE WHERE NOT archived AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// hydrate attaches the active participant lists and last-message previews to
// one page of summary rows using two batched lookups.
func (r *PgThreadRepository) hydrate(ctx context.Context, page []summaryRow) ([]messaging.ThreadSummary, error) {
	if len(page) == 0 {
		return []messaging.ThreadSummary{}, nil
	}

	threadIDs := make([]int64, 0, len(page))
	lastIDs := make([]int64, 0, len(page))
	for _, sr := range page {
		threadIDs = append(threadIDs, sr.thread.ID)
		if sr.thread.LastMessageID != nil {
			lastIDs = append(lastIDs, *sr.thread.LastMessageID)
		}
	}

	participants := make(map[int64][]messaging.Participant, len(page))
	rows, err := r.pool.Query(ctx, `
		SELECT thread_id, user_id, role, joined_at, left_at
		FROM participants
		WHERE thread_id = ANY($1) AND (left_at IS NULL OR left_at > now())
		ORDER BY joined_at, user_id
	`, threadIDs)
	if err != nil {
		return nil, fmt.Errorf("thread repo: participants: %w", err)
	}
	for rows.Next() {
		var p messaging.Participant
		if err := rows.Scan(&p.ThreadID, &p.UserID, &p.Role, &p.JoinedAt, &p.LeftAt); err != nil {
			rows.Close()
			return nil, err
		}
		participants[p.ThreadID] = append(participants[p.ThreadID], p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lastMessages := make(map[int64]messaging.Message, len(lastIDs))
	if len(lastIDs) > 0 {
		rows, err = r.pool.Query(ctx, `
			SELECT id, thread_id, sender_id, kind, text, dedupe_key, created_at
			FROM messages
			WHERE id = ANY($1)
		`, lastIDs)
		if err != nil {
			return nil, fmt.Errorf("thread repo: last messages: %w", err)
		}
		for rows.Next() {
			var m messaging.Message
			if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Kind, &m.Text, &m.DedupeKey, &m.CreatedAt); err != nil {
				rows.Close()
				return nil, err
			}
			lastMessages[m.ID] = m
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	summaries := make([]messaging.ThreadSummary, 0, len(page))
	for _, sr := range page {
		s := messaging.ThreadSummary{
			Thread:       sr.thread,
			UnreadCount:  sr.unread,
			Participants: participants[sr.thread.ID],
		}
		if sr.thread.LastMessageID != nil {
			if m, ok := lastMessages[*sr.thread.LastMessageID]; ok {
				s.LastMessage = &m
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

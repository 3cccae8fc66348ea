package task

import (
	"context"
	"encoding/json"
	"time"

	qport "go-parley/internal/infrastructure/queue/port"
	repoAdapter "go-parley/internal/pkg/messaging/persistence/repository/adapter"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ArchiveThreadsTaskType is the queue task name for the stale-thread sweep.
const ArchiveThreadsTaskType = "messaging:archive_stale"

// DefaultStaleAfterDays is how long a thread may sit without a new message
// before the sweep archives it.
const DefaultStaleAfterDays = 180

// ArchiveThreadsTaskPayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
type ArchiveThreadsTaskPayload struct {
	StaleAfterDays int `json:"staleAfterDays"`
}

// RegisterArchiveThreadsTask binds the handler to the provided server.
// The handler archives every thread whose last activity predates the cutoff.
// Archiving is a soft flag; archived threads stay readable and reachable.
func RegisterArchiveThreadsTask(srv qport.Server, pool *pgxpool.Pool, logger *zap.Logger) {
	srv.Register(ArchiveThreadsTaskType, func(ctx context.Context, t qport.Task) error {
		var p ArchiveThreadsTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}
		days := p.StaleAfterDays
		if days <= 0 {
			days = DefaultStaleAfterDays
		}
		cutoff := time.Now().AddDate(0, 0, -days)

		repo := repoAdapter.NewPgThreadRepository(pool)

		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		archived, err := repo.ArchiveStale(ctx, cutoff)
		if err != nil {
			return err
		}
		if archived > 0 {
			logger.Info("archived stale threads", zap.Int64("count", archived), zap.Time("cutoff", cutoff))
		}
		return nil
	})
}

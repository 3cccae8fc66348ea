package controller

import (
	"context"
	"net/http"
	"time"

	"go-parley/internal/pkg/messaging/application/notify"
	"go-parley/internal/pkg/messaging/application/usecase"
	"go-parley/internal/pkg/messaging/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// MarkReadController handles the read acknowledgment endpoint only (one controller per endpoint)
type MarkReadController struct {
	UC *usecase.MarkReadUseCase
}

func NewMarkReadController(pool *pgxpool.Pool, notifier *notify.Notifier, logger *zap.Logger) *MarkReadController {
	threads := adapter.NewPgThreadRepository(pool)
	messages := adapter.NewPgMessageRepository(pool)
	return &MarkReadController{UC: usecase.NewMarkReadUseCase(threads, messages, notifier, logger)}
}

// markReadRequest is the DTO for the HTTP request body
type markReadRequest struct {
	UpToMessageID *int64 `json:"up_to_message_id"`
}

// Handle returns a gin handler that acknowledges messages up to a boundary,
// or all of them when no boundary is given. The call is idempotent.
func (h *MarkReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := actorID(c)
		if userID == "" {
			return
		}
		threadID, ok := threadIDParam(c)
		if !ok {
			return
		}

		var req markReadRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		out, err := h.UC.Execute(ctx, usecase.MarkReadInput{
			ThreadID:      threadID,
			UserID:        userID,
			UpToMessageID: req.UpToMessageID,
		})
		if err != nil {
			replyError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"updated_count": out.UpdatedCount})
	}
}

package controller

import (
	"context"
	"net/http"
	"time"

	"go-parley/internal/pkg/messaging/application/notify"
	"go-parley/internal/pkg/messaging/application/usecase"
	"go-parley/internal/pkg/messaging/persistence/repository/adapter"
	"go-parley/internal/pkg/messaging/presence"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TypingController handles the typing signal endpoint only (one controller per endpoint)
type TypingController struct {
	UC *usecase.SetTypingUseCase
}

func NewTypingController(pool *pgxpool.Pool, tracker *presence.Tracker, notifier *notify.Notifier) *TypingController {
	threads := adapter.NewPgThreadRepository(pool)
	return &TypingController{UC: usecase.NewSetTypingUseCase(threads, tracker, notifier)}
}

// typingRequest is the DTO for the HTTP request body
type typingRequest struct {
	On bool `json:"on"`
}

// Handle returns a gin handler that toggles the caller's typing indicator.
// The signal expires on its own; clients keep it alive by re-posting.
func (h *TypingController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := actorID(c)
		if userID == "" {
			return
		}
		threadID, ok := threadIDParam(c)
		if !ok {
			return
		}

		var req typingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		active, err := h.UC.Execute(ctx, usecase.SetTypingInput{
			ThreadID: threadID,
			UserID:   userID,
			On:       req.On,
		})
		if err != nil {
			replyError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"active": active})
	}
}

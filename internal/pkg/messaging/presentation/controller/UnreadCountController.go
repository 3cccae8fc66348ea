package controller

import (
	"context"
	"net/http"
	"time"

	"go-parley/internal/pkg/messaging/application/usecase"
	"go-parley/internal/pkg/messaging/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnreadCountController handles the unread badge endpoint only (one controller per endpoint)
type UnreadCountController struct {
	UC *usecase.UnreadCountUseCase
}

func NewUnreadCountController(pool *pgxpool.Pool) *UnreadCountController {
	messages := adapter.NewPgMessageRepository(pool)
	return &UnreadCountController{UC: usecase.NewUnreadCountUseCase(messages)}
}

// Handle returns a gin handler that reports the caller's total unread count
// across all of their threads.
func (h *UnreadCountController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := actorID(c)
		if userID == "" {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		count, err := h.UC.Execute(ctx, userID)
		if err != nil {
			replyError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

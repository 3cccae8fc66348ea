package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	identityport "go-parley/internal/pkg/identity/port"
	"go-parley/internal/pkg/messaging/application/usecase"
	"go-parley/internal/pkg/messaging/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListMessagesController handles the message log endpoint only (one controller per endpoint)
type ListMessagesController struct {
	UC *usecase.ListMessagesUseCase
}

func NewListMessagesController(pool *pgxpool.Pool, directory identityport.Directory) *ListMessagesController {
	threads := adapter.NewPgThreadRepository(pool)
	messages := adapter.NewPgMessageRepository(pool)
	return &ListMessagesController{UC: usecase.NewListMessagesUseCase(threads, messages, directory)}
}

// Handle returns a gin handler that pages through a thread's messages,
// newest first. Query params: cursor (opaque), limit.
func (h *ListMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := actorID(c)
		if userID == "" {
			return
		}
		threadID, ok := threadIDParam(c)
		if !ok {
			return
		}

		limit, _ := strconv.Atoi(c.Query("limit"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		out, err := h.UC.Execute(ctx, usecase.ListMessagesInput{
			ThreadID: threadID,
			UserID:   userID,
			Cursor:   c.Query("cursor"),
			Limit:    limit,
		})
		if err != nil {
			replyError(c, err)
			return
		}

		views := make([]messageView, 0, len(out.Messages))
		for _, m := range out.Messages {
			views = append(views, toMessageView(m))
		}
		c.JSON(http.StatusOK, gin.H{
			"messages":    views,
			"next_cursor": out.NextCursor,
		})
	}
}

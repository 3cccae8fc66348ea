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

// GetThreadController handles the thread detail endpoint only (one controller per endpoint)
type GetThreadController struct {
	UC *usecase.GetThreadUseCase
}

func NewGetThreadController(pool *pgxpool.Pool) *GetThreadController {
	threads := adapter.NewPgThreadRepository(pool)
	return &GetThreadController{UC: usecase.NewGetThreadUseCase(threads)}
}

// Handle returns a gin handler that fetches one thread scoped to the caller.
func (h *GetThreadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := actorID(c)
		if userID == "" {
			return
		}
		threadID, ok := threadIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		summary, err := h.UC.Execute(ctx, usecase.GetThreadInput{ThreadID: threadID, UserID: userID})
		if err != nil {
			replyError(c, err)
			return
		}

		c.JSON(http.StatusOK, toThreadView(*summary))
	}
}

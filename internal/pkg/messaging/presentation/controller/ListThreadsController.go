package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go-parley/internal/pkg/messaging/application/usecase"
	"go-parley/internal/pkg/messaging/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListThreadsController handles the thread listing endpoint only (one controller per endpoint)
type ListThreadsController struct {
	UC *usecase.ListThreadsUseCase
}

func NewListThreadsController(pool *pgxpool.Pool) *ListThreadsController {
	threads := adapter.NewPgThreadRepository(pool)
	return &ListThreadsController{UC: usecase.NewListThreadsUseCase(threads)}
}

// Handle returns a gin handler that lists the caller's threads, most recently
// active first. Supported query params: search, status, page, limit.
func (h *ListThreadsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := actorID(c)
		if userID == "" {
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		out, err := h.UC.Execute(ctx, usecase.ListThreadsInput{
			UserID: userID,
			Search: c.Query("search"),
			Status: c.Query("status"),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			replyError(c, err)
			return
		}

		views := make([]threadView, 0, len(out.Threads))
		for _, s := range out.Threads {
			views = append(views, toThreadView(s))
		}
		c.JSON(http.StatusOK, gin.H{
			"threads": views,
			"page":    out.Page,
			"limit":   out.Limit,
			"total":   out.Total,
		})
	}
}

package controller

import (
	"context"
	"net/http"
	"time"

	identityport "go-parley/internal/pkg/identity/port"
	"go-parley/internal/pkg/messaging/application/usecase"
	"go-parley/internal/pkg/messaging/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateThreadController handles the create-thread endpoint only (one controller per endpoint)
type CreateThreadController struct {
	UC *usecase.CreateThreadUseCase
}

func NewCreateThreadController(pool *pgxpool.Pool, directory identityport.Directory, send *usecase.SendMessageUseCase) *CreateThreadController {
	threads := adapter.NewPgThreadRepository(pool)
	uc := usecase.NewCreateThreadUseCase(threads, directory, send)
	return &CreateThreadController{UC: uc}
}

// createThreadRequest is the DTO for the HTTP request body
type createThreadRequest struct {
	ParticipantIDs   []string `json:"participant_ids" binding:"required"`
	Title            *string  `json:"title"`
	IsGroup          bool     `json:"is_group"`
	FirstMessageText string   `json:"first_message_text"`
}

// Handle returns a gin handler that opens a new thread, optionally posting
// its first message in the same call.
func (h *CreateThreadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := actorID(c)
		if userID == "" {
			return
		}

		var req createThreadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		out, err := h.UC.Execute(ctx, usecase.CreateThreadInput{
			ActorID:          userID,
			ParticipantIDs:   req.ParticipantIDs,
			Title:            req.Title,
			IsGroup:          req.IsGroup,
			FirstMessageText: req.FirstMessageText,
		})
		if err != nil {
			replyError(c, err)
			return
		}

		c.JSON(http.StatusCreated, toThreadView(out.Thread))
	}
}

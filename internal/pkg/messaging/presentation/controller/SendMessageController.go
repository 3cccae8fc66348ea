package controller

import (
	"context"
	"net/http"
	"time"

	identityport "go-parley/internal/pkg/identity/port"
	"go-parley/internal/pkg/messaging/application/notify"
	"go-parley/internal/pkg/messaging/application/usecase"
	"go-parley/internal/pkg/messaging/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SendMessageController handles the send-message endpoint only (one controller per endpoint)
type SendMessageController struct {
	UC *usecase.SendMessageUseCase
}

func NewSendMessageController(pool *pgxpool.Pool, limiter usecase.Limiter, directory identityport.Directory, notifier *notify.Notifier, logger *zap.Logger) *SendMessageController {
	threads := adapter.NewPgThreadRepository(pool)
	messages := adapter.NewPgMessageRepository(pool)
	uc := usecase.NewSendMessageUseCase(threads, messages, limiter, directory, notifier, logger)
	return &SendMessageController{UC: uc}
}

// sendMessageRequest is the DTO for the HTTP request body
type sendMessageRequest struct {
	Text        *string             `json:"text"`
	Attachments []attachmentRequest `json:"attachments"`
	DedupeKey   *string             `json:"dedupe_key"`
}

type attachmentRequest struct {
	Name       string `json:"name"`
	Mime       string `json:"mime"`
	Size       int64  `json:"size"`
	StorageKey string `json:"storage_key" binding:"required"`
}

// Handle returns a gin handler that posts a message into a thread.
func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := actorID(c)
		if userID == "" {
			return
		}
		threadID, ok := threadIDParam(c)
		if !ok {
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		attachments := make([]usecase.AttachmentInput, 0, len(req.Attachments))
		for _, a := range req.Attachments {
			attachments = append(attachments, usecase.AttachmentInput{
				Name:       a.Name,
				Mime:       a.Mime,
				Size:       a.Size,
				StorageKey: a.StorageKey,
			})
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ThreadID:    threadID,
			SenderID:    userID,
			Text:        req.Text,
			Attachments: attachments,
			DedupeKey:   req.DedupeKey,
		})
		if err != nil {
			replyError(c, err)
			return
		}

		c.JSON(http.StatusCreated, toMessageView(*msg))
	}
}

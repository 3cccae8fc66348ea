package controller

import (
	"errors"
	"net/http"

	"go-parley/internal/pkg/messaging/application/usecase"
	messaging "go-parley/internal/pkg/messaging/domain"

	"github.com/gin-gonic/gin"
)

// replyError maps domain errors onto HTTP statuses in one place so every
// endpoint answers consistently.
func replyError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, messaging.ErrThreadForbidden):
		status = http.StatusForbidden
	case errors.Is(err, messaging.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, messaging.ErrMessageRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, usecase.ErrPersistence):
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

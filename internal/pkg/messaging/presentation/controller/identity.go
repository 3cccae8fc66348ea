package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Caller identity arrives pre-authenticated from the edge gateway as headers.
// The websocket endpoint also accepts query params since browsers cannot set
// headers on the upgrade request.
const (
	headerUserID = "X-User-Id"
)

// actorID resolves the calling user from the request, or answers 400 and
// returns "" when the identity is missing.
func actorID(c *gin.Context) string {
	id := c.GetHeader(headerUserID)
	if id == "" {
		id = c.Query("user_id")
	}
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
	}
	return id
}

// threadIDParam parses the :threadId path segment, answering 400 on garbage.
func threadIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("threadId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "threadId must be a positive integer"})
		return 0, false
	}
	return id, true
}

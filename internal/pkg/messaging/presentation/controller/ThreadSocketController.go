package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go-parley/internal/infrastructure/realtime"
	identityport "go-parley/internal/pkg/identity/port"
	"go-parley/internal/pkg/messaging/application/notify"
	"go-parley/internal/pkg/messaging/application/usecase"
	messaging "go-parley/internal/pkg/messaging/domain"
	repoAdapter "go-parley/internal/pkg/messaging/persistence/repository/adapter"
	"go-parley/internal/pkg/messaging/presence"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ThreadSocketController handles the websocket endpoint for realtime traffic.
type ThreadSocketController struct {
	router   *realtime.Router
	tracker  *presence.Tracker
	notifier *notify.Notifier
	logger   *zap.Logger

	sendUC     *usecase.SendMessageUseCase
	typingUC   *usecase.SetTypingUseCase
	markReadUC *usecase.MarkReadUseCase
	threadsUC  *usecase.GetThreadUseCase

	inflightTimeout time.Duration
}

func NewThreadSocketController(
	pool *pgxpool.Pool,
	router *realtime.Router,
	tracker *presence.Tracker,
	notifier *notify.Notifier,
	limiter usecase.Limiter,
	directory identityport.Directory,
	logger *zap.Logger,
) *ThreadSocketController {
	threads := repoAdapter.NewPgThreadRepository(pool)
	messages := repoAdapter.NewPgMessageRepository(pool)
	return &ThreadSocketController{
		router:          router,
		tracker:         tracker,
		notifier:        notifier,
		logger:          logger,
		sendUC:          usecase.NewSendMessageUseCase(threads, messages, limiter, directory, notifier, logger),
		typingUC:        usecase.NewSetTypingUseCase(threads, tracker, notifier),
		markReadUC:      usecase.NewMarkReadUseCase(threads, messages, notifier, logger),
		threadsUC:       usecase.NewGetThreadUseCase(threads),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

type inboundFrame struct {
	Type          string              `json:"type"`
	ThreadID      int64               `json:"thread_id,omitempty"`
	Text          *string             `json:"text,omitempty"`
	Attachments   []attachmentRequest `json:"attachments,omitempty"`
	DedupeKey     *string             `json:"dedupe_key,omitempty"`
	On            bool                `json:"on,omitempty"`
	UpToMessageID *int64              `json:"up_to_message_id,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type     string `json:"type"`
	ThreadID int64  `json:"thread_id,omitempty"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket and processes frames until
// the client disconnects.
func (ctl *ThreadSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := actorID(c)
		if userID == "" {
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			ctl.logger.Debug("websocket upgrade failed", zap.Error(err))
			return
		}

		conn := realtime.NewConnection(userID, ws)
		conn.Start()
		ctl.router.Attach(conn)
		defer ctl.disconnect(conn)

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Type: "connected"}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", err.Error())
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "join":
				ctl.handleJoin(c, conn, frame)
			case "leave":
				ctl.handleLeave(conn, frame)
			case "message":
				ctl.handleMessage(c, conn, frame)
			case "typing":
				ctl.handleTyping(c, conn, frame)
			case "read":
				ctl.handleRead(c, conn, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

// disconnect detaches the session and clears any typing signals the user
// left behind, broadcasting the updated lists to affected threads.
func (ctl *ThreadSocketController) disconnect(conn *realtime.Connection) {
	ctl.router.Detach(conn)
	conn.Close(websocket.CloseNormalClosure, "session closed")

	for _, threadID := range ctl.tracker.ClearUser(conn.UserID()) {
		ctl.notifier.Typing(threadID, conn.UserID(), false, ctl.tracker.Active(threadID))
	}
}

// handleJoin subscribes the session to a thread room after a membership check.
func (ctl *ThreadSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ThreadID <= 0 {
		ctl.replyError(conn, "bad_request", "thread_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	if _, err := ctl.threadsUC.Execute(ctx, usecase.GetThreadInput{ThreadID: frame.ThreadID, UserID: conn.UserID()}); err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	ctl.router.Join(realtime.ThreadRoom(frame.ThreadID), conn)
	ctl.ack(conn, "joined", frame.ThreadID)
}

func (ctl *ThreadSocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	if frame.ThreadID <= 0 {
		ctl.replyError(conn, "bad_request", "thread_id is required")
		return
	}
	ctl.router.Leave(realtime.ThreadRoom(frame.ThreadID), conn)
	ctl.ack(conn, "left", frame.ThreadID)
}

// handleMessage runs the regular send path; delivery to other sessions
// happens through the notifier fan-out, the sender gets a direct ack with
// the stored message.
func (ctl *ThreadSocketController) handleMessage(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ThreadID <= 0 {
		ctl.replyError(conn, "bad_request", "thread_id is required")
		return
	}

	attachments := make([]usecase.AttachmentInput, 0, len(frame.Attachments))
	for _, a := range frame.Attachments {
		attachments = append(attachments, usecase.AttachmentInput{
			Name:       a.Name,
			Mime:       a.Mime,
			Size:       a.Size,
			StorageKey: a.StorageKey,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	msg, err := ctl.sendUC.Execute(ctx, usecase.SendMessageInput{
		ThreadID:    frame.ThreadID,
		SenderID:    conn.UserID(),
		Text:        frame.Text,
		Attachments: attachments,
		DedupeKey:   frame.DedupeKey,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	out := struct {
		Type    string      `json:"type"`
		Message messageView `json:"message"`
	}{Type: "message:ack", Message: toMessageView(*msg)}
	if payload, err := json.Marshal(out); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ThreadSocketController) handleTyping(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ThreadID <= 0 {
		ctl.replyError(conn, "bad_request", "thread_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	if _, err := ctl.typingUC.Execute(ctx, usecase.SetTypingInput{
		ThreadID: frame.ThreadID,
		UserID:   conn.UserID(),
		On:       frame.On,
	}); err != nil {
		ctl.handleUseCaseError(conn, err)
	}
}

func (ctl *ThreadSocketController) handleRead(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ThreadID <= 0 {
		ctl.replyError(conn, "bad_request", "thread_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	if _, err := ctl.markReadUC.Execute(ctx, usecase.MarkReadInput{
		ThreadID:      frame.ThreadID,
		UserID:        conn.UserID(),
		UpToMessageID: frame.UpToMessageID,
	}); err != nil {
		ctl.handleUseCaseError(conn, err)
	}
}

func (ctl *ThreadSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	case errors.Is(err, messaging.ErrThreadForbidden):
		ctl.replyError(conn, "forbidden", "user is not a participant in this thread")
	case errors.Is(err, messaging.ErrMessageRateLimited):
		ctl.replyError(conn, "rate_limited", "message rate limit exceeded")
	case errors.Is(err, messaging.ErrNotFound):
		ctl.replyError(conn, "not_found", "thread not found")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *ThreadSocketController) ack(conn *realtime.Connection, frameType string, threadID int64) {
	if payload, err := json.Marshal(ackFrame{Type: frameType, ThreadID: threadID}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ThreadSocketController) replyError(conn *realtime.Connection, code string, message string) {
	frame := errorFrame{Type: "error", Code: code, Error: message}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}

package http

import (
	"go-parley/internal/infrastructure/realtime"
	identityport "go-parley/internal/pkg/identity/port"
	"go-parley/internal/pkg/messaging/application/notify"
	"go-parley/internal/pkg/messaging/application/usecase"
	"go-parley/internal/pkg/messaging/presence"
	"go-parley/internal/pkg/messaging/presentation/controller"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Deps carries the process-wide services shared across endpoints. The pool
// is the only hard requirement; everything else is long-lived singletons.
type Deps struct {
	Pool      *pgxpool.Pool
	Router    *realtime.Router
	Tracker   *presence.Tracker
	Notifier  *notify.Notifier
	Limiter   usecase.Limiter
	Directory identityport.Directory
	Logger    *zap.Logger
}

// RegisterRoutes registers messaging HTTP endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes.
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	listThreadsCtl := controller.NewListThreadsController(d.Pool)
	getThreadCtl := controller.NewGetThreadController(d.Pool)
	listMsgCtl := controller.NewListMessagesController(d.Pool, d.Directory)
	sendMsgCtl := controller.NewSendMessageController(d.Pool, d.Limiter, d.Directory, d.Notifier, d.Logger)
	createThreadCtl := controller.NewCreateThreadController(d.Pool, d.Directory, sendMsgCtl.UC)
	markReadCtl := controller.NewMarkReadController(d.Pool, d.Notifier, d.Logger)
	typingCtl := controller.NewTypingController(d.Pool, d.Tracker, d.Notifier)
	unreadCtl := controller.NewUnreadCountController(d.Pool)
	socketCtl := controller.NewThreadSocketController(d.Pool, d.Router, d.Tracker, d.Notifier, d.Limiter, d.Directory, d.Logger)

	// GET  /api/v1/threads                        -> list the caller's threads
	g.GET("/threads", listThreadsCtl.Handle())

	// POST /api/v1/threads                        -> open a thread
	g.POST("/threads", createThreadCtl.Handle())

	// GET  /api/v1/threads/:threadId              -> thread detail
	g.GET("/threads/:threadId", getThreadCtl.Handle())

	// GET  /api/v1/threads/:threadId/messages     -> page through the log
	g.GET("/threads/:threadId/messages", listMsgCtl.Handle())

	// POST /api/v1/threads/:threadId/messages     -> send a message
	g.POST("/threads/:threadId/messages", sendMsgCtl.Handle())

	// POST /api/v1/threads/:threadId/read         -> acknowledge messages
	g.POST("/threads/:threadId/read", markReadCtl.Handle())

	// POST /api/v1/threads/:threadId/typing       -> toggle typing signal
	g.POST("/threads/:threadId/typing", typingCtl.Handle())

	// GET  /api/v1/unread                         -> total unread badge
	g.GET("/unread", unreadCtl.Handle())

	// GET  /api/v1/ws                             -> realtime websocket
	g.GET("/ws", socketCtl.Handle())
}

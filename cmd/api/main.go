package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	v1 "go-parley/cmd/api/router/v1"
	"go-parley/internal/infrastructure/cache/adapter"
	"go-parley/internal/infrastructure/config"
	"go-parley/internal/infrastructure/database"
	"go-parley/internal/infrastructure/logging"
	queueadapter "go-parley/internal/infrastructure/queue/adapter"
	qport "go-parley/internal/infrastructure/queue/port"
	"go-parley/internal/infrastructure/realtime"
	identityadapter "go-parley/internal/pkg/identity/adapter"
	identityport "go-parley/internal/pkg/identity/port"
	"go-parley/internal/pkg/messaging/application/notify"
	"go-parley/internal/pkg/messaging/application/task"
	httpHandler "go-parley/internal/pkg/messaging/presentation/http"
	"go-parley/internal/pkg/messaging/presence"
	"go-parley/internal/pkg/messaging/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogDebug)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := database.Connect(connectCtx, cfg.DBURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer pool.Close()

	// Directory lookups go through Redis when available; a missing cache
	// only costs extra provider round trips.
	var directory identityport.Directory = identityadapter.NewHTTPDirectory(cfg.IdentityBaseURL)
	if cfg.RedisURL != "" {
		cache, err := adapter.NewRedisAdapter()
		if err != nil {
			logger.Warn("redis cache unavailable", zap.Error(err))
		} else {
			defer func() { _ = cache.Close() }()
			directory = identityadapter.NewCachedDirectory(directory, cache)
		}
	}

	rtRouter := realtime.NewRouter()
	defer rtRouter.Close()
	tracker := presence.NewTracker()
	notifier := notify.NewNotifier(rtRouter, logger)
	limiter := ratelimit.NewSlidingWindow()

	if cfg.RedisURL != "" && cfg.ArchiveSweepEnabled {
		startArchiveSweep(ctx, cfg, pool, logger)
	}

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, httpHandler.Deps{
		Pool:      pool,
		Router:    rtRouter,
		Tracker:   tracker,
		Notifier:  notifier,
		Limiter:   limiter,
		Directory: directory,
		Logger:    logger,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

// startArchiveSweep runs the asynq worker for maintenance tasks and enqueues
// the stale-thread sweep once a day. Uniqueness on the task keeps multiple
// API nodes from piling up duplicate sweeps.
func startArchiveSweep(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger *zap.Logger) {
	server, err := queueadapter.NewAsynqServer(logger)
	if err != nil {
		logger.Warn("task server unavailable", zap.Error(err))
		return
	}
	task.RegisterArchiveThreadsTask(server, pool, logger)
	go func() {
		if err := server.Run(ctx); err != nil {
			logger.Error("task server", zap.Error(err))
		}
	}()

	client, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		logger.Warn("task client unavailable", zap.Error(err))
		return
	}

	go func() {
		defer func() { _ = client.Close() }()
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			payload, _ := json.Marshal(task.ArchiveThreadsTaskPayload{StaleAfterDays: cfg.ArchiveStaleAfterDays})
			_, err := client.Enqueue(ctx, qport.Task{Type: task.ArchiveThreadsTaskType, Payload: payload}, qport.EnqueueOption{
				Queue:     "maintenance",
				MaxRetry:  5,
				UniqueTTL: time.Hour,
			})
			if err != nil {
				logger.Warn("enqueue archive sweep", zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Package main runs the hackathon dashboard HTTP server with WebSocket change feed and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hackboard/backend/config"
	"github.com/hackboard/backend/internal/analytics"
	"github.com/hackboard/backend/internal/dataservice"
	"github.com/hackboard/backend/internal/events"
	"github.com/hackboard/backend/internal/ideas"
	"github.com/hackboard/backend/internal/metrics"
	"github.com/hackboard/backend/internal/middleware"
	"github.com/hackboard/backend/internal/notifications"
	"github.com/hackboard/backend/internal/realtime"
	"github.com/hackboard/backend/internal/seed"
	"github.com/hackboard/backend/internal/store"
	"github.com/hackboard/backend/internal/users"
	"github.com/hackboard/backend/internal/worker"
	"github.com/hackboard/backend/pkg/queue"
	"github.com/hackboard/backend/pkg/redis"
	"github.com/hackboard/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	backend, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store", zap.Error(err))
	}
	m := metrics.New()
	st := store.New(m.InstrumentBackend(backend), logger)
	defer st.Close()

	if err := seed.Ensure(ctx, st, logger); err != nil {
		logger.Fatal("seed", zap.Error(err))
	}

	// Realtime: Redis pub/sub fans the change feed out across instances when configured.
	var rdb *redis.Client
	hub := realtime.NewHub(logger, nil, nil)
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
		hub = realtime.NewHub(logger, redisPubSub, redisPubSub)
	}
	defer hub.Close()

	var dispatcher dataservice.Dispatcher = hub
	var deliverer *worker.NotificationDeliverer
	if cfg.Service.NotifyViaQueue {
		jobQueue := queue.NewQueue(rdb.Client, logger)
		dispatcher = jobQueue
		deliverer = worker.NewNotificationDeliverer(jobQueue, hub, logger)
	}

	svc := dataservice.New(st, dataservice.Options{
		Latency:    cfg.Service.Latency,
		Capacity:   dataservice.CapacityPolicyFor(cfg.Service.EnforceCapacity),
		Publisher:  hub,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	eventHandler := events.NewHandler(svc)
	ideaHandler := ideas.NewHandler(svc)
	userHandler := users.NewHandler(svc)
	notificationHandler := notifications.NewHandler(svc)
	analyticsHandler := analytics.NewHandler(svc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(m.Middleware())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Identity(svc))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.GET("/ws", realtime.ServeWs(hub, logger))

	requireUser := middleware.RequireUser()
	requireAdmin := middleware.RequireAdmin(svc)
	requireOwner := ideas.RequireOwner(svc)

	// Events
	router.GET("/events", eventHandler.List)
	router.POST("/events", requireAdmin, eventHandler.Create)
	router.GET("/events/:id", eventHandler.GetByID)
	router.GET("/events/:id/ideas", eventHandler.ListIdeas)
	router.POST("/events/:id/join", requireUser, eventHandler.Join)

	// Ideas, join requests, kanban tasks and requirement responses
	router.GET("/ideas", ideaHandler.List)
	router.POST("/ideas", requireUser, ideaHandler.Create)
	router.GET("/ideas/:id", ideaHandler.GetByID)
	router.PUT("/ideas/:id", requireOwner, ideaHandler.Update)
	router.POST("/ideas/:id/join", requireUser, ideaHandler.Join)
	router.POST("/ideas/:id/requests", requireUser, ideaHandler.RequestJoin)
	router.POST("/ideas/:id/requests/:userId/accept", requireOwner, ideaHandler.AcceptRequest)
	router.POST("/ideas/:id/requests/:userId/reject", requireOwner, ideaHandler.RejectRequest)
	router.PUT("/ideas/:id/stage", requireOwner, ideaHandler.SetStage)
	router.POST("/ideas/:id/tasks", requireUser, ideaHandler.CreateTask)
	router.PATCH("/tasks/:id/status", requireUser, ideaHandler.UpdateTaskStatus)
	router.POST("/ideas/:id/requirements/:reqId/responses", requireUser, ideaHandler.Respond)
	router.POST("/ideas/:id/requirements/:reqId/responses/:respId/approve", requireOwner, ideaHandler.ApproveResponse)
	router.POST("/ideas/:id/requirements/:reqId/responses/:respId/reject", requireOwner, ideaHandler.RejectResponse)

	// Users
	router.GET("/users", userHandler.List)
	router.GET("/users/:id", userHandler.GetByID)
	router.GET("/users/:id/ideas", userHandler.Ideas)

	// Notifications (acting user's own)
	notificationGroup := router.Group("/notifications", requireUser)
	{
		notificationGroup.GET("", notificationHandler.List)
		notificationGroup.POST("/read-all", notificationHandler.MarkAllRead)
		notificationGroup.POST("/:id/read", notificationHandler.MarkRead)
	}

	// Analytics
	router.GET("/analytics/summary", requireAdmin, analyticsHandler.Summary)
	router.GET("/analytics/skills", analyticsHandler.Skills)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (notification delivery from the Redis queue)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if deliverer != nil {
		go deliverer.Run(workerCtx)
		logger.Info("notification worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	orderapp "github.com/senkronix/b2b-bridge/internal/application/order"
	snapshotapp "github.com/senkronix/b2b-bridge/internal/application/snapshot"
	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
	"github.com/senkronix/b2b-bridge/internal/infrastructure/config"
	"github.com/senkronix/b2b-bridge/internal/infrastructure/logger"
	"github.com/senkronix/b2b-bridge/internal/infrastructure/persistence"
	"github.com/senkronix/b2b-bridge/internal/infrastructure/snapshot"
	"github.com/senkronix/b2b-bridge/internal/interfaces/http/handler"
	"github.com/senkronix/b2b-bridge/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.NewFromConfig(cfg.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting portal server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Snapshots live in Redis so they survive restarts; fall back to an
	// in-process store when Redis is not reachable at boot.
	var store catalog.SnapshotStore
	var pingSnapshot func() error
	redisStore, err := snapshot.NewRedisStore(snapshot.RedisConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, log)
	if err != nil {
		log.Warn("Redis unavailable, snapshots will not survive restarts", zap.Error(err))
		store = snapshot.NewMemoryStore()
	} else {
		store = redisStore
		pingSnapshot = redisStore.Ping
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
		log.Info("Snapshot store connected", zap.String("addr", cfg.Redis.Addr()))
	}

	orderRepo := persistence.NewOrderRepository(db.DB)

	snapshotService := snapshotapp.NewService(store, log)
	orderService := orderapp.NewService(orderRepo, store, log)

	engine := router.New(cfg, router.Handlers{
		Snapshot: handler.NewSnapshotHandler(snapshotService, log),
		Orders:   handler.NewOrderHandler(orderService, log),
		Health:   handler.NewHealthHandler(db.Ping, pingSnapshot),
	}, log)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/braymix/panda/internal/api/handler"
	"github.com/braymix/panda/internal/api/router"
	"github.com/braymix/panda/internal/application"
	"github.com/braymix/panda/internal/clock"
	"github.com/braymix/panda/internal/config"
	"github.com/braymix/panda/internal/domain/event"
	"github.com/braymix/panda/internal/infrastructure/memory"
	"github.com/braymix/panda/internal/infrastructure/postgres"
	redisinfra "github.com/braymix/panda/internal/infrastructure/redis"
	"github.com/braymix/panda/internal/pkg/logger"
	"github.com/braymix/panda/internal/pkg/metrics"
	"github.com/braymix/panda/internal/worker"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	logger.Init(cfg.Log.Env, cfg.Log.Level)
	defer logger.Sync()

	m := metrics.Init()

	var (
		repo   event.Repository
		checks []handler.ReadinessCheck
	)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; events are lost on restart")
		repo = memory.NewEventRepository()
	default:
		db := openDatabase(&cfg.Database)
		defer db.Close()
		repo = postgres.NewEventRepository(db)
		checks = append(checks, handler.ReadinessCheck{
			Name: "postgres",
			Ping: func(ctx context.Context) error { return postgres.Ping(ctx, db) },
		})
	}

	var lock application.MutationLock
	if cfg.Redis.Enabled {
		client := openRedis(&cfg.Redis)
		defer client.Close()
		lock = redisinfra.NewEventLock(redisinfra.NewLockManager(client), &cfg.Redis, m)
		checks = append(checks, handler.ReadinessCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return redisinfra.Ping(ctx, client) },
		})
	}

	eventService := application.NewEventService(repo, lock, clock.NewSystem(), m)

	e := router.New(router.Deps{
		EventService:    eventService,
		ReadinessChecks: checks,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		MetricsAuth:     cfg.Metrics,
		Metrics:         m,
		Gatherer:        prometheus.DefaultGatherer,
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := worker.NewEventStatsCollector(eventService, m.EventsStored, cfg.Worker.StatsInterval)
	go stats.Start(ctx)

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Server.Addr()), zap.String("storage", cfg.Storage.Driver))
		if err := e.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	stats.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}

func openDatabase(cfg *config.DatabaseConfig) *sqlx.DB {
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(db.DB, cfg.MigrationsPath); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		logger.Info("migrations applied", zap.String("path", cfg.MigrationsPath))
	}
	return db
}

func openRedis(cfg *config.RedisConfig) *goredis.Client {
	client, err := redisinfra.NewClient(cfg)
	if err != nil {
		logger.Fatal("invalid redis configuration", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisinfra.Ping(ctx, client); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	return client
}

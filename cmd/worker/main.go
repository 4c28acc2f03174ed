package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenaris-admin/tenaris-admin/internal/app"
	"github.com/tenaris-admin/tenaris-admin/internal/events"
	jobmetrics "github.com/tenaris-admin/tenaris-admin/internal/jobs"
	"github.com/tenaris-admin/tenaris-admin/internal/platform/cache"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
	"github.com/tenaris-admin/tenaris-admin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionTTL)
	metrics := jobmetrics.NewMetrics(nil)

	eventsRepo := events.NewRepository(pool)
	eventsService := events.NewService(eventsRepo, logger)

	// Users deactivated in the last day; their sessions must not survive a
	// missed inline revocation.
	pendingRevocations := func(ctx context.Context) ([]string, error) {
		rows, err := pool.Query(ctx, `
			SELECT id FROM users
			WHERE deleted_at IS NOT NULL AND deleted_at > NOW() - INTERVAL '1 day'`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, rows.Err()
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeAuditRecord, Handler: jobs.AuditRecordHandler(eventsService, metrics, logger)},
			{Type: jobs.TaskTypeSessionSweep, Handler: jobs.SessionSweepHandler(sessionManager, pendingRevocations, metrics, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "45 * * * *", Task: jobs.NewSessionSweepTask(), Options: []asynq.Option{asynq.MaxRetry(2)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

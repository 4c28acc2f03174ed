package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/tenaris-admin/tenaris-admin/internal/app"
	"github.com/tenaris-admin/tenaris-admin/internal/auth"
	"github.com/tenaris-admin/tenaris-admin/internal/clients"
	"github.com/tenaris-admin/tenaris-admin/internal/costcenters"
	"github.com/tenaris-admin/tenaris-admin/internal/events"
	"github.com/tenaris-admin/tenaris-admin/internal/observability"
	"github.com/tenaris-admin/tenaris-admin/internal/packages"
	"github.com/tenaris-admin/tenaris-admin/internal/platform/cache"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
	"github.com/tenaris-admin/tenaris-admin/internal/sources"
	"github.com/tenaris-admin/tenaris-admin/internal/users"
	"github.com/tenaris-admin/tenaris-admin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	eventsRepo := events.NewRepository(dbpool)
	eventsService := events.NewService(eventsRepo, logger)
	recorder := jobs.NewDispatcher(jobClient, eventsService, logger)
	eventsHandler := events.NewHandler(logger, eventsService)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, sessionManager, recorder, logger)
	usersHandler := users.NewHandler(logger, usersService)

	costCenterRepo := costcenters.NewRepository(dbpool)
	costCenterService := costcenters.NewService(costCenterRepo, recorder, logger)
	costCenterHandler := costcenters.NewHandler(logger, costCenterService)

	clientsRepo := clients.NewRepository(dbpool)
	clientsService := clients.NewService(clientsRepo, usersService, costCenterService, recorder, logger)
	clientsHandler := clients.NewHandler(logger, clientsService)

	packagesRepo := packages.NewRepository(dbpool)
	packagesService := packages.NewService(packagesRepo, recorder, logger)
	packagesHandler := packages.NewHandler(logger, packagesService)

	sourcesRepo := sources.NewRepository(dbpool)
	sourcesService := sources.NewService(sourcesRepo, recorder, logger)
	sourcesHandler := sources.NewHandler(logger, sourcesService)

	authService := auth.NewService(usersRepo, sessionManager, logger)
	authHandler := auth.NewHandler(logger, authService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		AuthHandler:       authHandler,
		ClientsHandler:    clientsHandler,
		UsersHandler:      usersHandler,
		PackagesHandler:   packagesHandler,
		SourcesHandler:    sourcesHandler,
		CostCenterHandler: costCenterHandler,
		EventsHandler:     eventsHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}

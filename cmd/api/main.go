package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/correspondence-service/internal/api/http"
	"github.com/spec-kit/correspondence-service/internal/api/http/handlers"
	"github.com/spec-kit/correspondence-service/internal/auth"
	"github.com/spec-kit/correspondence-service/internal/config"
	"github.com/spec-kit/correspondence-service/internal/events"
	"github.com/spec-kit/correspondence-service/internal/lock"
	"github.com/spec-kit/correspondence-service/internal/observability"
	"github.com/spec-kit/correspondence-service/internal/persistence"
	"github.com/spec-kit/correspondence-service/internal/repository"
	"github.com/spec-kit/correspondence-service/internal/service"
	"github.com/spec-kit/correspondence-service/internal/worker"
	"github.com/spec-kit/correspondence-service/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var (
		caseRepo    repository.CaseRepository
		locker      lock.CaseLocker
		bridge      *events.RedisBridge
		postgresDep handlers.Pinger
		redisDep    handlers.Pinger
		redisStore  *persistence.Redis
	)

	if cfg.Workflow.UseMemoryStores {
		logger.Warn("using in-memory case storage and locks; state is lost on restart")
		caseRepo = repository.NewMemoryCaseRepository()
		locker = lock.NewMemoryLocker()
	} else {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		redisStore, err = persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisStore.Close()

		caseRepo = repository.NewPostgresCaseRepository(pg.Pool)
		locker = lock.NewRedisLocker(redisStore.Client, cfg.Workflow.LockTTL())
		bridge = events.NewRedisBridge(redisStore.Client, cfg.Workflow.EventsChannel, logger)
		postgresDep = pg
		redisDep = redisStore
	}

	calculator := workflow.NewCalculator(cfg.Workflow.Location())
	caseService := service.NewCaseService(service.CaseDependencies{
		CaseRepo:   caseRepo,
		Locker:     locker,
		Validator:  workflow.NewValidator(workflow.WithReviewHandoff(cfg.Workflow.ReviewHandoff)),
		Calculator: calculator,
		Dispatcher: dispatcher,
		Clock:      workflow.SystemClock,
		Logger:     logger,
		Metrics:    metrics,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(dispatcher, notificationService, bridge)

	var deadlineWorker *worker.DeadlineWorker
	if cfg.Jobs.Enabled && redisStore != nil {
		deadlineWorker = worker.NewDeadlineWorker(redisStore.AsynqOpt(), cfg.Jobs, calculator.Location(), caseService, workflow.SystemClock, logger)
		if err := deadlineWorker.Start(); err != nil {
			logger.Fatal("failed to start deadline worker", zap.Error(err))
		}
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, postgresDep, redisDep)
	casesHandler := handlers.NewCasesHandler(caseService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Cases:          casesHandler,
		AuthMiddleware: authMiddleware,
		Metrics:        metrics.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	if deadlineWorker != nil {
		deadlineWorker.Stop()
	}
	caseService.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

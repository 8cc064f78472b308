package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/forensic-case-service/internal/api/http"
	"github.com/spec-kit/forensic-case-service/internal/api/http/handlers"
	"github.com/spec-kit/forensic-case-service/internal/auth"
	"github.com/spec-kit/forensic-case-service/internal/config"
	"github.com/spec-kit/forensic-case-service/internal/events"
	"github.com/spec-kit/forensic-case-service/internal/observability"
	"github.com/spec-kit/forensic-case-service/internal/persistence"
	"github.com/spec-kit/forensic-case-service/internal/repository"
	"github.com/spec-kit/forensic-case-service/internal/service"
	"github.com/spec-kit/forensic-case-service/internal/storage"
	"github.com/spec-kit/forensic-case-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	caseRepo := repository.NewCaseRepository(pool)
	specimenRepo := repository.NewSpecimenRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	evidenceRepo := repository.NewEvidenceRepository(pool)

	var blobStore storage.BlobStore
	if cfg.Storage.S3Bucket != "" {
		s3Store, err := storage.NewS3BlobStore(ctx, cfg.Storage, redis.Client, logger)
		if err != nil {
			logger.Fatal("failed to init blob storage", zap.Error(err))
		}
		blobStore = s3Store
	} else {
		logger.Warn("STORAGE_S3_BUCKET not provided; evidence files held in memory")
		blobStore = storage.NewMemoryBlobStore()
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	caseService := service.NewCaseService(service.CaseDependencies{
		CaseRepo:   caseRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		CaseRepo:   caseRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	evidenceService := service.NewEvidenceService(service.EvidenceDependencies{
		CaseRepo:     caseRepo,
		SpecimenRepo: specimenRepo,
		TestRepo:     testRepo,
		EvidenceRepo: evidenceRepo,
		BlobStore:    blobStore,
		Dispatcher:   dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Cases:          handlers.NewCasesHandler(caseService),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService),
		Evidence:       handlers.NewEvidenceHandler(evidenceService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

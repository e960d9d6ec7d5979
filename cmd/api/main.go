package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/hostel-issues/internal/api/http"
	"github.com/spec-kit/hostel-issues/internal/api/http/handlers"
	"github.com/spec-kit/hostel-issues/internal/auth"
	"github.com/spec-kit/hostel-issues/internal/cache"
	"github.com/spec-kit/hostel-issues/internal/config"
	"github.com/spec-kit/hostel-issues/internal/events"
	"github.com/spec-kit/hostel-issues/internal/intake"
	"github.com/spec-kit/hostel-issues/internal/observability"
	"github.com/spec-kit/hostel-issues/internal/persistence"
	"github.com/spec-kit/hostel-issues/internal/repository"
	"github.com/spec-kit/hostel-issues/internal/service"
	"github.com/spec-kit/hostel-issues/internal/worker"
)

const shutdownTimeout = 10 * time.Second

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
	pool := pg.PoolHandle()
	if pool == nil {
		logger.Fatal("POSTGRES_DSN is required")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	userRepo := repository.NewUserRepository(pool)
	issueRepo := repository.NewIssueRepository(pool)
	commentRepo := repository.NewIssueCommentRepository(pool)
	historyRepo := repository.NewIssueHistoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	corpusCache := cache.NewCorpusCache(redis.Client, issueRepo, cfg.Intake.CorpusCacheTTL(), logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartSubscribers(dispatcher, notificationService, corpusCache)

	wordSets := intake.DefaultWordSets().WithOverrides(intake.WordSets{
		StopWords:     cfg.Intake.StopWords,
		VagueWords:    cfg.Intake.VagueWords,
		LocationWords: cfg.Intake.LocationWords,
		UrgencyWords:  cfg.Intake.UrgencyWords,
	})
	keywords := intake.NewKeywordExtractor(wordSets.StopWords)
	intakeService := service.NewIntakeService(service.IntakeDependencies{
		Keywords: keywords,
		Analyzer: intake.NewWritingAnalyzer(wordSets, keywords),
		Matcher: intake.NewSimilarityMatcher(keywords, intake.MatcherConfig{
			Threshold:     cfg.Intake.SimilarityThreshold,
			MaxCandidates: cfg.Intake.MaxCandidates,
		}),
		Corpus:      corpusCache,
		Pool:        worker.NewDuplicateCheckPool(cfg.Intake.CheckConcurrency),
		CorpusLimit: cfg.Intake.CorpusLimit,
		Logger:      logger,
	})
	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:   issueRepo,
		CommentRepo: commentRepo,
		HistoryRepo: historyRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(cfg.Auth, userRepo, tokens)
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	dependencies := map[string]handlers.Pinger{"postgres": pg}
	if redis.Client != nil {
		dependencies["redis"] = redis
	}
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Users:          handlers.NewUsersHandler(authService),
		Issues:         handlers.NewIssuesHandler(issueService),
		Intake:         handlers.NewIntakeHandler(intakeService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

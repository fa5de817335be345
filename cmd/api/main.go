package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/lyrics-service/internal/api/http"
	"github.com/spec-kit/lyrics-service/internal/api/http/handlers"
	"github.com/spec-kit/lyrics-service/internal/auth"
	"github.com/spec-kit/lyrics-service/internal/config"
	"github.com/spec-kit/lyrics-service/internal/events"
	"github.com/spec-kit/lyrics-service/internal/lyrics"
	"github.com/spec-kit/lyrics-service/internal/observability"
	"github.com/spec-kit/lyrics-service/internal/persistence"
	"github.com/spec-kit/lyrics-service/internal/repository"
	"github.com/spec-kit/lyrics-service/internal/service"
	"github.com/spec-kit/lyrics-service/internal/spotify"
	"github.com/spec-kit/lyrics-service/internal/worker"
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
	lyricCommentRepo := repository.NewLyricCommentRepository(pool)
	trackCommentRepo := repository.NewTrackCommentRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	tokenProvider := spotify.NewTokenProvider(cfg.Spotify)
	spotifyClient := spotify.NewClient(cfg.Spotify)
	invoker := spotify.NewInvoker(tokenProvider, logger, metrics)
	appCred := spotify.NewAppCredentialHolder(tokenProvider)

	lyricsProvider := lyrics.NewProvider(cfg.Lyrics, logger)
	lyricsSource := lyrics.NewCachedProvider(lyricsProvider, redis, cfg.Lyrics.CacheTTL(), logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Spotify:    tokenProvider,
		Dispatcher: dispatcher,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		UserRepo: userRepo,
		Client:   spotifyClient,
		Invoker:  invoker,
		AppCred:  appCred,
		Lyrics:   lyricsSource,
	})
	commentService := service.NewCommentService(lyricCommentRepo, trackCommentRepo, dispatcher)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenManager())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.Spotify.LoginRedirect),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		Comments:       handlers.NewCommentsHandler(commentService),
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

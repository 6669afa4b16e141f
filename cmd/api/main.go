package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/Avdeevkonst/oauth2-chat/internal/api/http"
	"github.com/Avdeevkonst/oauth2-chat/internal/api/http/handlers"
	"github.com/Avdeevkonst/oauth2-chat/internal/auth"
	"github.com/Avdeevkonst/oauth2-chat/internal/cache"
	"github.com/Avdeevkonst/oauth2-chat/internal/config"
	"github.com/Avdeevkonst/oauth2-chat/internal/events"
	"github.com/Avdeevkonst/oauth2-chat/internal/observability"
	"github.com/Avdeevkonst/oauth2-chat/internal/persistence"
	"github.com/Avdeevkonst/oauth2-chat/internal/repository"
	"github.com/Avdeevkonst/oauth2-chat/internal/service"
	"github.com/Avdeevkonst/oauth2-chat/internal/worker"
	"github.com/Avdeevkonst/oauth2-chat/internal/ws"
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
	profileRepo := repository.NewProfileRepository(pool)
	chatRepo := repository.NewChatRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Mail)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		ProfileRepo:       profileRepo,
		PasswordResetRepo: resetRepo,
		Dispatcher:        dispatcher,
	})
	profileService := service.NewProfileService(userRepo, profileRepo)

	presence := cache.NewPresenceStore(redis.Client)
	registry := ws.NewConnectionRegistry(presence, logger)
	messageDispatcher := ws.NewMessageDispatcher(messageRepo, registry, dispatcher, logger)
	chatService := service.NewChatService(chatRepo, messageRepo, userRepo, presence)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	usersHandler := handlers.NewUsersHandler(authService, profileService)
	contactsHandler := handlers.NewContactsHandler(chatService)
	wsHandler := handlers.NewWSHandler(registry, messageDispatcher, logger)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Users:          usersHandler,
		Contacts:       contactsHandler,
		WS:             wsHandler,
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

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/bcm-risk-service/internal/api/http"
	"github.com/spec-kit/bcm-risk-service/internal/api/http/handlers"
	"github.com/spec-kit/bcm-risk-service/internal/auth"
	"github.com/spec-kit/bcm-risk-service/internal/config"
	"github.com/spec-kit/bcm-risk-service/internal/events"
	"github.com/spec-kit/bcm-risk-service/internal/observability"
	"github.com/spec-kit/bcm-risk-service/internal/persistence"
	"github.com/spec-kit/bcm-risk-service/internal/repository"
	"github.com/spec-kit/bcm-risk-service/internal/service"
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
	departmentRepo := repository.NewDepartmentRepository(pool)
	riskRepo := repository.NewRiskRepository(pool)

	metrics := observability.NewMetrics()

	dispatcher := events.NewAsyncDispatcher(cfg.Notification.QueueSize, logger)
	defer dispatcher.Close()

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(userRepo, tokenManager, logger)
	riskService := service.NewRiskService(service.RiskDependencies{
		RiskRepo:       riskRepo,
		DepartmentRepo: departmentRepo,
		UserRepo:       userRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	departmentService := service.NewDepartmentService(departmentRepo, logger)
	dashboardService := service.NewDashboardService(riskRepo, departmentRepo, redis, cfg.Notification.DashboardTTL(), logger)
	exportService := service.NewExportService(riskRepo, departmentRepo, userRepo, logger)

	notificationService := service.NewNotificationService(userRepo, service.NewLogMailer(logger), cfg.Notification, logger)
	notificationService.Register(dispatcher)

	// risk writes invalidate cached dashboards
	invalidate := func(ctx context.Context, event events.Event) error {
		dashboardService.Invalidate(ctx, "")
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventRiskCreated,
		events.EventRiskUpdated,
		events.EventRiskLocked,
		events.EventRiskUnlocked,
		events.EventRiskDeleted,
	} {
		dispatcher.Subscribe(eventType, invalidate)
	}

	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Risks:          handlers.NewRisksHandler(riskService),
		Departments:    handlers.NewDepartmentsHandler(departmentService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Exports:        handlers.NewExportsHandler(exportService),
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

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/cleantownship/cleantown-service/internal/api/http"
	"github.com/cleantownship/cleantown-service/internal/api/http/handlers"
	"github.com/cleantownship/cleantown-service/internal/auth"
	"github.com/cleantownship/cleantown-service/internal/config"
	"github.com/cleantownship/cleantown-service/internal/events"
	"github.com/cleantownship/cleantown-service/internal/observability"
	"github.com/cleantownship/cleantown-service/internal/persistence"
	"github.com/cleantownship/cleantown-service/internal/service"
	"github.com/cleantownship/cleantown-service/internal/session"
	"github.com/cleantownship/cleantown-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := persistence.Open(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open record store", zap.Error(err))
	}
	defer stores.Close()

	var sessionStore session.Store
	if stores.Redis != nil {
		sessionStore = session.NewRedisStore(stores.Redis.Client, stores.Redis.Prefix)
	} else {
		memoryStore := session.NewMemoryStore()
		sessionStore = memoryStore
		go worker.RunSessionSweeper(ctx, memoryStore, cfg.Auth.SweepInterval(), logger)
	}
	sessions := session.NewManager(sessionStore, cfg.Auth.SessionTTL())

	dispatcher := events.NewInMemoryDispatcher()
	notifications := worker.NewNotificationWorker(service.NewNotificationService(logger, cfg.Notification), cfg.Notification.QueueSize, logger)
	notifications.Subscribe(dispatcher)
	notificationsDone := make(chan struct{})
	go func() {
		notifications.Run(ctx)
		close(notificationsDone)
	}()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		ReporterRepo: stores.Reporters,
		Sessions:     sessions,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	issueService := service.NewIssueService(stores.Issues, dispatcher, logger)
	dashboardService := service.NewDashboardService(stores.Reporters, stores.Issues, logger, cfg.Dashboard.NameLookupConcurrency)

	if cfg.Admin.SeedAdmin() {
		if _, err := authService.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
			logger.Fatal("failed to seed administrator", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout(), httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, stores.Pingers, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Issues:         handlers.NewIssuesHandler(issueService),
		Admin:          handlers.NewAdminHandler(authService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), sessions),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", stores.Backend))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	cancel()
	<-notificationsDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

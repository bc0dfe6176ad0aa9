// @title                       Platform API
// @version                     1.0
// @description                 Multitenant core: module registry, tenant isolation, auth and notifications.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tenantcore/platform/internal/api"
	"github.com/tenantcore/platform/internal/api/handler"
	"github.com/tenantcore/platform/internal/api/ws"
	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/core/ports"
	"github.com/tenantcore/platform/internal/core/registry"
	"github.com/tenantcore/platform/internal/core/service"
	"github.com/tenantcore/platform/internal/infrastructure/config"
	mongodb "github.com/tenantcore/platform/internal/infrastructure/db/mongo"
	redisdb "github.com/tenantcore/platform/internal/infrastructure/db/redis"
	"github.com/tenantcore/platform/internal/infrastructure/modulesource"
	"github.com/tenantcore/platform/internal/infrastructure/queue"
	"github.com/tenantcore/platform/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "platform: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "platform-api",
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Database.URL, Database: cfg.Database.Name})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Host: cfg.Redis.Host, Port: cfg.Redis.Port, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	users := mongodb.NewUserRepository(db)
	tenants := mongodb.NewTenantRepository(db)
	modules := mongodb.NewModuleRepository(db)
	notifications := mongodb.NewNotificationRepository(db)

	// --- Services ---
	authService := service.NewAuthService(
		users, tenants, redisdb.NewChallengeStore(rdb),
		cfg.JWTSecret, cfg.JWTTTL, cfg.Auth.TOTPIssuer,
		logger.Component(log, "auth"),
	)
	tenantService := service.NewTenantService(tenants, logger.Component(log, "tenants"))
	notificationService := service.NewNotificationService(notifications, logger.Component(log, "notifications"))

	dispatcher := queue.NewDispatcher(cfg.NotificationWorkers, notificationService, logger.Component(log, "dispatcher"))
	dispatcher.Start(context.Background())

	// --- Module registry ---
	reg := registry.New()
	loader := registry.NewLoader(reg, moduleSource(cfg, modules), cfg.Modules.LoadTimeout, logger.Component(log, "registry"))
	n, err := loader.Load(ctx)
	if err != nil {
		dispatcher.Stop()
		return fmt.Errorf("initial module load: %w", err)
	}
	log.Info().Int("modules", n).Str("source", cfg.Modules.Source).Msg("module registry loaded")
	loader.OnLoad(reloadNotifier(dispatcher, logger.Component(log, "registry")))

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Log:           logger.Component(log, "http"),
		JWTSecret:     cfg.JWTSecret,
		FrontendURL:   cfg.FrontendURL,
		CSPAdvanced:   cfg.CSPAdvanced,
		Users:         users,
		Auth:          handler.NewAuthHandler(authService),
		Modules:       handler.NewModuleHandler(reg, modules, loader),
		Tenants:       handler.NewTenantHandler(tenantService),
		Notifications: handler.NewNotificationHandler(notificationService, dispatcher),
		Health: handler.NewHealthHandler(map[string]handler.Checker{
			"mongodb": handler.MongoChecker(db),
			"redis":   handler.RedisChecker(rdb),
		}),
		Gateway: ws.NewGateway(cfg.FrontendURL, logger.Component(log, "ws")),
	})

	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case serveErr = <-srvErr:
		if serveErr != nil {
			log.Error().Err(serveErr).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	// Drains accepted notifications. A handler still running past the shutdown
	// timeout gets ErrClosed from Enqueue.
	dispatcher.Stop()
	log.Info().Msg("shutdown complete")
	return serveErr
}

// moduleSource picks the registry source. Descriptors registered through the
// API live in Mongo, so every mode ends with the repository source.
func moduleSource(cfg *config.Config, repo ports.ModuleRepository) registry.Source {
	stored := modulesource.NewRepository(repo)
	switch cfg.Modules.Source {
	case "http":
		client := &http.Client{Timeout: cfg.Modules.LoadTimeout}
		return modulesource.Chain{modulesource.NewHTTP(cfg.Modules.URL, client), stored}
	case "mongo":
		return stored
	default:
		return modulesource.Chain{modulesource.Builtin(), stored}
	}
}

// reloadNotifier tells super admins that the registry was reloaded.
func reloadNotifier(q handler.Enqueuer, log zerolog.Logger) registry.LoadHook {
	return func(_ context.Context, count int) {
		err := q.Enqueue(ports.NotificationInput{
			Title:       "Module registry reloaded",
			Description: strconv.Itoa(count) + " modules registered",
			Type:        domain.NotificationInfo,
			Metadata:    map[string]any{"modules": count},
		})
		if err != nil {
			log.Warn().Err(err).Msg("reload notification dropped")
		}
	}
}

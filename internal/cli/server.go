package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/testing-service/internal/cache"
	"github.com/SAP-F-2025/testing-service/internal/config"
	"github.com/SAP-F-2025/testing-service/internal/events"
	"github.com/SAP-F-2025/testing-service/internal/handlers"
	"github.com/SAP-F-2025/testing-service/internal/repositories/casdoor"
	"github.com/SAP-F-2025/testing-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/testing-service/internal/services"
	"github.com/SAP-F-2025/testing-service/internal/utils"
	"github.com/SAP-F-2025/testing-service/internal/validator"
	"github.com/SAP-F-2025/testing-service/pkg"
)

const shutdownTimeout = 30 * time.Second

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP server and event consumers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if portFlag != "" {
		cfg.Port = portFlag
	}

	slogLogger := newLogger(cfg)
	logger := utils.NewSlogLogger(slogLogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := migrateOnStart(ctx, db); err != nil {
		closeDatabase(db)
		return err
	}

	// Redis is optional; without it caching is disabled
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			slogLogger.Warn("Redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		CasdoorConfig: casdoor.CasdoorConfig{
			Endpoint:         cfg.Casdoor.Endpoint,
			ClientID:         cfg.Casdoor.ClientID,
			ClientSecret:     cfg.Casdoor.ClientSecret,
			Certificate:      cfg.Casdoor.Cert,
			OrganizationName: cfg.Casdoor.Organization,
			ApplicationName:  cfg.Casdoor.Application,
		},
	})
	if err := repoManager.Initialize(); err != nil {
		closeDatabase(db)
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	bus, err := events.NewBus(cfg.EventBus(), slogLogger)
	if err != nil {
		_ = repoManager.Shutdown(context.Background())
		return err
	}

	serviceManager := services.NewServiceManager(
		repoManager.GetRepository(),
		cache.NewCacheManager(redisClient),
		events.NewWatermillEventPublisher(bus.Publisher, slogLogger),
		slogLogger,
		validator.New(),
		services.ServiceManagerConfig{
			Attempt:      services.AttemptConfig{EnforceSubmitAccess: cfg.EnforceSubmitAccess},
			DashboardTTL: cfg.DashboardTTL,
		},
	)
	if err := serviceManager.Initialize(ctx); err != nil {
		_ = bus.Close()
		_ = repoManager.Shutdown(context.Background())
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	eventRouter, err := events.NewRouter(bus, slogLogger)
	if err != nil {
		_ = bus.Close()
		_ = repoManager.Shutdown(context.Background())
		return err
	}
	eventRouter.OnRoleChanged(services.HandleRoleChanged(serviceManager.RoleSync()))

	routerCtx, stopRouter := context.WithCancel(context.Background())
	defer stopRouter()
	go func() {
		if err := eventRouter.Run(routerCtx); err != nil {
			slogLogger.Error("Event router stopped", "error", err)
		}
	}()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlers.NewHandlerManager(serviceManager, logger).SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "events_driver", cfg.Events.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-stop:
		logger.Info("Shutting down server...")
	case <-ctx.Done():
		logger.Info("Context canceled, shutting down server...")
	case runErr = <-serverErr:
		logger.Error("Server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	stopRouter()
	if err := eventRouter.Close(); err != nil {
		logger.Error("Failed to close event router", "error", err)
	}
	if err := serviceManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}
	if err := bus.Close(); err != nil {
		logger.Error("Failed to close event bus", "error", err)
	}
	if err := repoManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to close database", "error", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("Server exited")
	return runErr
}

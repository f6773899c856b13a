package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/testing-service/internal/cache"
	"github.com/SAP-F-2025/testing-service/internal/events"
	"github.com/SAP-F-2025/testing-service/internal/repositories"
	"github.com/SAP-F-2025/testing-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Attempt      AttemptConfig
	DashboardTTL time.Duration
}

// DefaultServiceManagerConfig enforces submit access and caches dashboards
// for one minute
func DefaultServiceManagerConfig() ServiceManagerConfig {
	return ServiceManagerConfig{
		Attempt:      AttemptConfig{EnforceSubmitAccess: true},
		DashboardTTL: cache.DashboardCacheConfig.TTL,
	}
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	assignmentService AssignmentService
	authoringService  AuthoringService
	attemptService    AttemptService
	projectionService ProjectionService
	exportService     ExportService
	roleSyncService   RoleSyncService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies.
// A nil cache manager disables caching.
func NewServiceManager(
	repo repositories.Repository,
	cacheManager *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	config ServiceManagerConfig,
) ServiceManager {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &serviceManager{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if sm.shutdown {
		return errors.New("service manager is shut down")
	}

	sm.logger.Info("Initializing service manager",
		"enforce_submit_access", sm.config.Attempt.EnforceSubmitAccess,
		"dashboard_ttl", sm.config.DashboardTTL)

	sm.assignmentService = NewAssignmentService(sm.repo, sm.cache, sm.logger)
	sm.authoringService = NewAuthoringService(sm.repo, sm.cache, sm.logger, sm.validator)
	sm.attemptService = NewAttemptService(sm.repo, sm.cache, sm.publisher, sm.logger, sm.validator, sm.config.Attempt)
	sm.projectionService = NewProjectionService(sm.repo, sm.cache, sm.logger, sm.config.DashboardTTL)
	sm.exportService = NewExportService(sm.projectionService, sm.logger)
	sm.roleSyncService = NewRoleSyncService(sm.repo, sm.cache, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters

func (sm *serviceManager) Assignment() AssignmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.assignmentService
}

func (sm *serviceManager) Authoring() AuthoringService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.authoringService
}

func (sm *serviceManager) Attempt() AttemptService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.attemptService
}

func (sm *serviceManager) Projection() ProjectionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.projectionService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.exportService
}

func (sm *serviceManager) RoleSync() RoleSyncService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.roleSyncService
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// HealthCheck checks the repository; the cache is optional and only logged
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return errors.New("service manager not initialized")
	}
	if sm.shutdown {
		return errors.New("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	if err := sm.cache.HealthCheck(ctx); err != nil && !errors.Is(err, cache.ErrCacheNotAvailable) {
		sm.logger.Warn("Cache health check failed", "error", err)
	}

	return nil
}

// Shutdown closes the event publisher. The repository is owned by its manager.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	var err error
	if sm.publisher != nil {
		if closeErr := sm.publisher.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close event publisher: %w", closeErr)
		}
	}

	sm.shutdown = true
	return err
}

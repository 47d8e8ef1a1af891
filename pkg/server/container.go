package server

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/cache"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/config"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/database"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/handlers"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/migration"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/observability"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories/sqlite"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/services"
)

// startupTimeout bounds connecting to SQLite and Redis
const startupTimeout = 10 * time.Second

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Location *time.Location
	Metrics  *observability.Metrics

	ReportService services.ReportService
	LedgerService services.LedgerService

	// Internal dependencies
	database     *database.ConnectionManager
	repositories *repositories.Repositories
	cache        *cache.ReportCache
	stopListener context.CancelFunc
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := config.NewLogger(cfg)

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db := database.NewConnectionManager(cfg.Database.ToConnectionConfig(logger))
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	container := &Container{
		Config:       cfg,
		Logger:       logger,
		Location:     location,
		Metrics:      observability.NewMetrics(),
		database:     db,
		repositories: sqlite.NewRepositories(db.GetDB(), logger),
	}

	container.cache = container.newReportCache(ctx)
	container.cache.SetRecorder(container.Metrics)

	serviceContainer, err := services.NewServiceContainer(container.repositories, &services.ServiceConfig{
		Reports: services.ReportConfig{
			TopCount: cfg.Reports.TopCount,
			Location: location,
			Metrics:  container.Metrics,
		},
		Cache: container.cache,
	}, logger)
	if err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("failed to create service container: %w", err)
	}

	container.ReportService = serviceContainer.ReportService
	container.LedgerService = serviceContainer.LedgerService

	logger.WithFields(logrus.Fields{
		"environment":   cfg.Environment,
		"deployment":    config.GetDeploymentMode(),
		"cache_enabled": container.cache.Enabled(),
		"timezone":      location.String(),
	}).Info("Container initialized")

	return container, nil
}

// newReportCache connects to Redis when an address is configured. An unreachable
// Redis is not fatal: reports fall back to computing from the database.
func (c *Container) newReportCache(ctx context.Context) *cache.ReportCache {
	if c.Config.Redis.Addr == "" {
		return cache.NewReportCache(nil, c.Config.Redis.CacheTTL, c.Logger)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	reportCache := cache.NewReportCache(client, c.Config.Redis.CacheTTL, c.Logger)

	entry := c.Logger.WithField("redis_addr", c.Config.Redis.Addr)
	if err := reportCache.Ping(ctx); err != nil {
		entry.WithError(err).Warn("Redis unavailable, reports will be computed uncached until it recovers")
		return reportCache
	}

	listenCtx, stop := context.WithCancel(context.Background())
	if err := reportCache.ListenForInvalidation(listenCtx); err != nil {
		stop()
		entry.WithError(err).Warn("Failed to subscribe to report cache invalidations")
		return reportCache
	}
	c.stopListener = stop

	entry.Info("Report cache enabled")
	return reportCache
}

// RouterConfig returns the handler wiring for this container
func (c *Container) RouterConfig() *handlers.RouterConfig {
	return &handlers.RouterConfig{
		ReportService: c.ReportService,
		LedgerService: c.LedgerService,
		Location:      c.Location,
		Database:      c.database,
		Cache:         c.cache,
		Metrics:       c.Metrics,
	}
}

// MiddlewareConfig returns the middleware tunables for this container
func (c *Container) MiddlewareConfig() *handlers.MiddlewareConfig {
	return &handlers.MiddlewareConfig{
		Logger:         c.Logger,
		RateLimitRPS:   c.Config.RateLimit.RequestsPerSecond,
		RateLimitBurst: c.Config.RateLimit.Burst,
		Metrics:        c.Metrics,
	}
}

// Database returns the connection manager, e.g. for migrations
func (c *Container) Database() *database.ConnectionManager {
	return c.database
}

// JSONImporter returns an importer over this container's repositories. A committed
// import bumps the report cache.
func (c *Container) JSONImporter(dir string) *migration.JSONImporter {
	importer := migration.NewJSONImporter(c.repositories, dir, c.Logger)
	if c.cache != nil {
		importer.OnImported(c.cache.Bump)
	}
	return importer
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.stopListener != nil {
		c.stopListener()
		c.stopListener = nil
	}

	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			return fmt.Errorf("failed to close report cache: %w", err)
		}
		c.cache = nil
	}

	if c.database != nil {
		if err := c.database.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}

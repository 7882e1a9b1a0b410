package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/rpruizc/scimonitor/internal/config"
	httphandler "github.com/rpruizc/scimonitor/internal/handler/http"
	"github.com/rpruizc/scimonitor/internal/health"
	"github.com/rpruizc/scimonitor/internal/infrastructure/cache"
	mongodbinfra "github.com/rpruizc/scimonitor/internal/infrastructure/mongodb"
	repo "github.com/rpruizc/scimonitor/internal/infrastructure/repository/mongodb"
	"github.com/rpruizc/scimonitor/internal/service"
)

const (
	containerInitTimeout = 30 * time.Second
	redisPingTimeout     = 5 * time.Second
)

// Container holds all application dependencies, wired once at startup.
// Both backing stores are pinged during construction; a dependency that is
// down at boot fails the process instead of surfacing later as request
// errors.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	MongoDB *mongo.Client
	Redis   *redis.Client

	PaperRepo     *repo.MongoPaperRepository
	ResponseCache *cache.ResponseCache
	PaperService  *service.PaperService
	Reporter      *health.Reporter

	PaperHandler *httphandler.PaperHandler
	CacheHandler *httphandler.CacheHandler
}

// ContainerOption configures the container during construction.
type ContainerOption func(*Container)

// WithLogger sets the logger for the container.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.Logger = logger
	}
}

// NewContainer builds the dependency container from configuration.
func NewContainer(cfg *config.Config, opts ...ContainerOption) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.setupInfrastructure(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup infrastructure: %w", err)
	}

	c.setupServices()
	c.setupHealthReporter()
	c.setupHTTPHandlers()

	return c, nil
}

func (c *Container) setupInfrastructure() error {
	ctx, cancel := context.WithTimeout(context.Background(), containerInitTimeout)
	defer cancel()

	if err := c.setupMongoDB(ctx); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}

	if err := c.setupRedis(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	return nil
}

// setupMongoDB initializes the MongoDB client and verifies connectivity.
func (c *Container) setupMongoDB(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(c.Config.MongoDB.URI).
		SetMaxPoolSize(c.Config.MongoDB.MaxPoolSize)

	client, connectErr := mongo.Connect(clientOpts)
	if connectErr != nil {
		return fmt.Errorf("failed to connect: %w", connectErr)
	}
	c.MongoDB = client

	pingCtx, cancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", c.Config.MongoDB.Database),
	)

	db := client.Database(c.Config.MongoDB.Database)
	indexCtx, indexCancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer indexCancel()

	if indexErr := mongodbinfra.CreateAllIndexes(indexCtx, db); indexErr != nil {
		return fmt.Errorf("failed to create indexes: %w", indexErr)
	}

	return nil
}

// setupRedis initializes the Redis client and verifies connectivity.
func (c *Container) setupRedis(ctx context.Context) error {
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
		PoolSize: c.Config.Redis.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if pingErr := c.Redis.Ping(pingCtx).Err(); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Logger.InfoContext(ctx, "connected to Redis",
		slog.String("addr", c.Config.Redis.Addr),
	)

	return nil
}

func (c *Container) setupServices() {
	db := c.MongoDB.Database(c.Config.MongoDB.Database)

	c.PaperRepo = repo.NewMongoPaperRepository(
		db.Collection(mongodbinfra.CollectionPapers),
		repo.WithPaperRepoLogger(c.Logger),
	)

	c.ResponseCache = cache.NewResponseCache(cache.ResponseCacheConfig{
		Client:    c.Redis,
		KeyPrefix: c.Config.Cache.KeyPrefix,
		TTL:       c.Config.Cache.TTL,
		Logger:    c.Logger,
	})

	c.PaperService = service.NewPaperService(service.PaperServiceConfig{
		Repo:   c.PaperRepo,
		Cache:  c.ResponseCache,
		Logger: c.Logger,
	})
}

func (c *Container) setupHealthReporter() {
	probers := []health.Prober{
		health.NewMongoProber(c.MongoDB),
		health.NewRedisProber(c.Redis),
	}

	c.Reporter = health.NewReporter(probers,
		health.WithProbeTimeout(c.Config.Health.ProbeTimeout),
		health.WithDegradedThreshold(c.Config.Health.DegradedThreshold),
		health.WithVersion(c.Config.App.Version),
		health.WithLogger(c.Logger),
	)
}

func (c *Container) setupHTTPHandlers() {
	c.PaperHandler = httphandler.NewPaperHandler(c.PaperService)
	c.CacheHandler = httphandler.NewCacheHandler(c.ResponseCache)
}

// Close releases container resources.
func (c *Container) Close() error {
	c.Logger.Info("closing container resources...")

	var errs []error

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	if c.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.Config.MongoDB.Timeout)
		if err := c.MongoDB.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb disconnect: %w", err))
		}
		cancel()
	}

	return errors.Join(errs...)
}

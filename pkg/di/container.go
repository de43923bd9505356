// Package di wires configuration, cache backend, database, repositories,
// and domain services into a single container.
package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-marketplace-services/cache"
	"github.com/goliatone/go-marketplace-services/cart"
	"github.com/goliatone/go-marketplace-services/financial"
	"github.com/goliatone/go-marketplace-services/internal/cacheinfra"
	"github.com/goliatone/go-marketplace-services/internal/persistence"
	"github.com/goliatone/go-marketplace-services/pkg/config"
	"github.com/goliatone/go-marketplace-services/pkg/logger"
	"github.com/goliatone/go-marketplace-services/review"
	"github.com/goliatone/go-marketplace-services/user"
)

// Container holds singleton instances of every wired component.
type Container struct {
	cfg    *config.Config
	log    *slog.Logger
	db     *bun.DB
	cache  cache.Service
	users  user.Store
	carts  *cart.Service
	review *review.Service
	fin    *financial.Service
}

// NewContainer builds the full object graph from cfg: cache backend per
// CacheBackend, database per DBDriver, then repositories and services. The
// schema is created when absent.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log := logger.New(logger.Options{
		Service: "marketplace",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	cacheService, err := buildCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("di: build cache: %w", err)
	}

	db, err := persistence.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := persistence.InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	users := persistence.NewUserRepository(db)

	return &Container{
		cfg:    cfg,
		log:    log,
		db:     db,
		cache:  cacheService,
		users:  users,
		carts:  cart.NewService(persistence.NewCartRepository(db), cacheService, log),
		review: review.NewService(persistence.NewReviewRepository(db), users, cacheService, log),
		fin:    financial.NewService(persistence.NewFinancialRepository(db), users, cacheService, log),
	}, nil
}

// NewContainerWithDefaults builds a container from the environment.
func NewContainerWithDefaults(ctx context.Context) (*Container, error) {
	return NewContainer(ctx, config.Load())
}

func buildCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.CacheBackend {
	case "redis":
		return cacheinfra.NewRedisService(cfg.RedisURL, cfg.CacheTTL)
	case "", "memory":
		cacheCfg := cache.DefaultConfig()
		cacheCfg.TTL = cfg.CacheTTL
		cacheCfg.Capacity = cfg.CacheCapacity
		return cache.NewService(cacheCfg)
	default:
		return nil, fmt.Errorf("di: unsupported cache backend %q", cfg.CacheBackend)
	}
}

// Close releases the container's database resources.
func (c *Container) Close() error {
	return c.db.Close()
}

// Logger returns the shared logger.
func (c *Container) Logger() *slog.Logger { return c.log }

// DB returns the shared database handle.
func (c *Container) DB() *bun.DB { return c.db }

// CacheService returns the shared cache backend.
func (c *Container) CacheService() cache.Service { return c.cache }

// Users returns the user lookup collaborator.
func (c *Container) Users() user.Store { return c.users }

// CartService returns the cart domain service.
func (c *Container) CartService() *cart.Service { return c.carts }

// ReviewService returns the review domain service.
func (c *Container) ReviewService() *review.Service { return c.review }

// FinancialService returns the financial domain service.
func (c *Container) FinancialService() *financial.Service { return c.fin }

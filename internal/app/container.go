package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kapu/member-directory-go/internal/config"
	"github.com/kapu/member-directory-go/internal/constants"
	"github.com/kapu/member-directory-go/internal/server"
	"github.com/kapu/member-directory-go/internal/service"
	"github.com/kapu/member-directory-go/internal/service/cache"
	"github.com/kapu/member-directory-go/internal/source"
	"go.uber.org/zap"
)

// Container bundles assembled services for constructing the runtime server.
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Directory *service.Directory

	closers []func()
}

// NewServer instantiates the HTTP/WebSocket server over the wired services.
func (c *Container) NewServer() (*server.Server, error) {
	if c == nil || c.Directory == nil {
		return nil, fmt.Errorf("directory service not initialized")
	}
	return server.NewServer(c.Config, c.Directory, c.Logger), nil
}

// Close tears down held resources in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure services. Heavy-weight initialization
// (source backend, cache) happens here so the server stays focused on
// transport concerns.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	container = &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			container.Close()
		}
	}()

	// Record source backend
	var recordSource source.RecordSource
	switch cfg.Source.Kind {
	case "postgres":
		pg, pgErr := source.NewPostgresSource(source.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if pgErr != nil {
			return nil, fmt.Errorf("failed to create postgres source: %w", pgErr)
		}
		container.closers = append(container.closers, func() {
			_ = pg.Close()
		})
		recordSource = pg
	default:
		httpClient := &http.Client{Timeout: constants.SourceConfig.RequestTimeout}
		recordSource = source.NewRESTSource(httpClient, cfg.Site.URL, cfg.Site.Token, logger)
	}

	// Optional shared cache; the directory degrades to direct reads when
	// it is absent or unreachable.
	var directoryCache service.Cache
	if cfg.CacheEnabled() {
		cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			logger.Warn("Cache unavailable, continuing without it", zap.Error(cacheErr))
		} else {
			container.closers = append(container.closers, func() {
				_ = cacheSvc.Close()
			})
			directoryCache = cacheSvc
		}
	}

	mapper := service.NewMapper(cfg.Site.URL)
	container.Directory = service.NewDirectory(recordSource, mapper, directoryCache, cfg.Site.URL, logger)

	logger.Info("Application services assembled",
		zap.String("source_kind", cfg.Source.Kind),
		zap.Bool("cache", directoryCache != nil),
	)
	return container, nil
}

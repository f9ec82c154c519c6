//go:build wireinject
// +build wireinject

package wire

import (
	"dronefleet/cmd/config"
	"dronefleet/internal/fleet/cli"
	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/fleet/usecases"
	"dronefleet/internal/infra/cache"
	"dronefleet/internal/infra/httpclient"
	"dronefleet/internal/infra/kvstore"
	"dronefleet/internal/infra/node"
	"dronefleet/internal/logger"

	"github.com/google/wire"
)

var SessionSet = wire.NewSet(
	provideSessionStore,
	wire.Bind(new(usecases.SessionStore), new(kvstore.Store)),
	usecases.NewSession,
)

var EntityServiceSet = wire.NewSet(
	provideRegistry,
	provideLogger,
	provideAPIClient,
	wire.Bind(new(usecases.APIClient), new(*httpclient.StandardClient)),
	provideListCache,
	wire.Bind(new(cache.Cache), new(*cache.RistrettoCache)),
	usecases.NewEntityService,
	wire.Bind(new(usecases.EntityService), new(*usecases.SimpleEntityService)),
)

func InitializeApp() (*cli.App, error) {
	wire.Build(
		provideAppConfig,
		SessionSet,
		EntityServiceSet,
		usecases.NewAuthService,
		wire.Bind(new(usecases.AuthService), new(*usecases.SimpleAuthService)),
		cli.NewApp,
	)
	return nil, nil
}

func provideAppConfig() config.AppConfig {
	return config.LoadConfig()
}

func provideRegistry(cfg config.AppConfig) (*domain.Registry, error) {
	return domain.NewDefaultRegistry(cfg.Entities...)
}

func provideLogger(cfg config.AppConfig) logger.Logger {
	return logger.NewLogger(cfg.General.LogLevel)
}

func provideAPIClient(cfg config.AppConfig, log logger.Logger) (*httpclient.StandardClient, error) {
	return httpclient.NewClient(httpclient.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: node.GetNodeInfo().UserAgent(),
		Logger:    log,
	})
}

func provideListCache(cfg config.AppConfig) (*cache.RistrettoCache, error) {
	cacheConfig := cache.DefaultConfig()
	cacheConfig.TTL = cfg.Cache.ListTTL
	return cache.New(cacheConfig)
}

func provideSessionStore(cfg config.AppConfig) (kvstore.Store, error) {
	return kvstore.Open(kvstore.Config{
		Backend: kvstore.Backend(cfg.Session.Backend),
		DSN:     cfg.Session.DSN,
		Redis: &kvstore.RedisConfig{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			KeyPrefix:   cfg.Redis.KeyPrefix,
			DialTimeout: kvstore.DefaultRedisConfig().DialTimeout,
		},
	})
}

package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/pkg/authorize"
	"github.com/Alijeyrad/medibook_backend/pkg/database"
	"github.com/Alijeyrad/medibook_backend/pkg/email"
	"github.com/Alijeyrad/medibook_backend/pkg/events"
	"github.com/Alijeyrad/medibook_backend/pkg/logs"
	"github.com/Alijeyrad/medibook_backend/pkg/observability"
	redispkg "github.com/Alijeyrad/medibook_backend/pkg/redis"
	s3pkg "github.com/Alijeyrad/medibook_backend/pkg/s3"
	"github.com/Alijeyrad/medibook_backend/pkg/sms"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideRepoClient),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideS3Client),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvideEventPublisher),
)

func ProvideLogger(lc fx.Lifecycle, cfg *config.Config) *slog.Logger {
	logger, stop := logs.New(cfg)
	slog.SetDefault(logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stop()
			return nil
		},
	})
	return logger
}

func ProvideRepoClient(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*repo.Client, error) {
	client, err := database.NewRepoClient(cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Migrations.AutoMigrate {
		if err := database.Migrate(context.Background(), client, cfg.Database.Migrations.SafeMode); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	logger.Info("database ready", "driver", cfg.Database.Driver)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return client.Close()
		},
	})
	return client, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.New(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

// ProvideAuthorization uses the Postgres policy store, or an in-memory
// enforcer seeded with the default policies under the memory driver.
func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (authorize.IAuthorization, error) {
	if cfg.Database.IsMemory() {
		enforcer, err := authorize.NewMemoryEnforcer(cfg.Authorization.CasbinModelPath, authorize.DefaultPolicies())
		if err != nil {
			return nil, err
		}
		base, err := authorize.NewAuthorization(enforcer)
		if err != nil {
			return nil, err
		}
		return wrapAudit(base, cfg, logger), nil
	}

	dsn := database.FromCentralConfig(cfg.CasbinDatabase).DSN()
	enforcer, cleanup, err := authorize.NewEnforcer(cfg.Authorization.CasbinModelPath, dsn, cfg.Authorization.PolicySyncEnabled)
	if err != nil {
		return nil, err
	}
	base, err := authorize.NewAuthorization(enforcer)
	if err != nil {
		cleanup(context.Background())
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("cleaning up Casbin enforcer")
			cleanup(ctx)
			return nil
		},
	})
	return wrapAudit(base, cfg, logger), nil
}

func wrapAudit(base *authorize.Authorization, cfg *config.Config, logger *slog.Logger) authorize.IAuthorization {
	if !cfg.Authorization.EnableAudit {
		return base
	}
	return authorize.NewAuditedAuthorization(base, logger)
}

func ProvideEmailClient(cfg *config.Config) *email.Client {
	return email.New(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

// ProvideS3Client returns nil when S3 is disabled.
func ProvideS3Client(cfg *config.Config) (*s3pkg.Client, error) {
	return s3pkg.New(context.Background(), cfg.S3)
}

// ProvideNatsClient returns a nil connection when nats.url is empty.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if cfg.Nats.URL == "" {
		slog.Info("nats disabled, events will not be published")
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL,
		nats.Name(cfg.Observability.ServiceName),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideEventPublisher(nc *nats.Conn) events.Publisher {
	return events.NewNATSPublisher(nc)
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), cfg.Observability, cfg.Server.Environment)
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

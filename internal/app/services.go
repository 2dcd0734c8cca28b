package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/seed"
	"github.com/Alijeyrad/medibook_backend/internal/service/booking"
	"github.com/Alijeyrad/medibook_backend/internal/service/catalog"
	"github.com/Alijeyrad/medibook_backend/internal/service/identity"
	"github.com/Alijeyrad/medibook_backend/internal/service/ledger"
	"github.com/Alijeyrad/medibook_backend/internal/service/notification"
	"github.com/Alijeyrad/medibook_backend/internal/service/payment"
	"github.com/Alijeyrad/medibook_backend/internal/service/prescription"
	"github.com/Alijeyrad/medibook_backend/pkg/events"
	pasetotoken "github.com/Alijeyrad/medibook_backend/pkg/paseto"
	s3pkg "github.com/Alijeyrad/medibook_backend/pkg/s3"
	"github.com/Alijeyrad/medibook_backend/pkg/sms"
	"github.com/Alijeyrad/medibook_backend/pkg/util/password"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvidePasetoManager,
		ProvidePasswordHasher,
		ProvideIdentityService,
		ProvideCatalogService,
		ProvidePaymentService,
		ProvideNotificationService,
		ProvideLedgerService,
		ProvideBookingService,
		ProvidePrescriptionService,
	),
	fx.Invoke(SeedMemoryStore),
)

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewFromConfig(cfg)
}

func ProvidePasswordHasher(cfg *config.Config) *password.Hasher {
	return password.FromConfig(cfg.Password)
}

func ProvideIdentityService(
	db *repo.Client,
	rdb *redis.Client,
	tokens *pasetotoken.Manager,
	hasher *password.Hasher,
	cfg *config.Config,
) identity.Service {
	return identity.New(db, identity.NewRedisSessionStore(rdb), tokens, hasher, cfg)
}

func ProvideCatalogService(db *repo.Client, s3 *s3pkg.Client) catalog.Service {
	// A typed nil would defeat the service's "uploads disabled" check.
	if s3 == nil {
		return catalog.New(db, nil)
	}
	return catalog.New(db, s3)
}

func ProvidePaymentService(cfg *config.Config) payment.Service {
	return payment.New(payment.NewGateway(cfg.Payment), cfg)
}

func ProvideNotificationService(smsCli *sms.Client, cfg *config.Config) notification.Service {
	return notification.New(smsCli, cfg)
}

func ProvideLedgerService(db *repo.Client, bus events.Publisher, cfg *config.Config) ledger.Service {
	return ledger.New(db, bus, cfg.Ledger)
}

func ProvideBookingService(
	cat catalog.Service,
	payments payment.Service,
	led ledger.Service,
	bus events.Publisher,
	cfg *config.Config,
) (booking.Service, error) {
	return booking.New(cat, payments, led, bus, cfg)
}

func ProvidePrescriptionService(
	db *repo.Client,
	led ledger.Service,
	notifier notification.Service,
	cfg *config.Config,
) prescription.Service {
	return prescription.New(db, led, notifier, cfg.Prescription)
}

// SeedMemoryStore loads the demo catalog when the in-process store is used,
// since it starts empty on every run.
func SeedMemoryStore(lc fx.Lifecycle, cfg *config.Config, db *repo.Client, ids identity.Service) {
	if !cfg.Database.IsMemory() {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_, err := seed.Run(ctx, db, ids)
			return err
		},
	})
}

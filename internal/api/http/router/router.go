package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/medibook_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/medibook_backend/internal/service/booking"
	"github.com/Alijeyrad/medibook_backend/internal/service/catalog"
	"github.com/Alijeyrad/medibook_backend/internal/service/identity"
	"github.com/Alijeyrad/medibook_backend/internal/service/ledger"
	"github.com/Alijeyrad/medibook_backend/internal/service/prescription"
	"github.com/Alijeyrad/medibook_backend/pkg/authorize"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Auth            authorize.IAuthorization
	IdentitySvc     identity.Service
	CatalogSvc      catalog.Service
	BookingSvc      booking.Service
	LedgerSvc       ledger.Service
	PrescriptionSvc prescription.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

type permFunc func(authorize.Resource, authorize.Action) fiber.Handler

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	authRequired := middleware.AuthRequired(r.p.IdentitySvc)
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	authH := handler.NewAuthHandler(r.p.IdentitySvc)
	catalogH := handler.NewCatalogHandler(r.p.CatalogSvc)
	bookingH := handler.NewBookingHandler(r.p.BookingSvc)
	appointmentH := handler.NewAppointmentHandler(r.p.LedgerSvc)
	prescriptionH := handler.NewPrescriptionHandler(r.p.PrescriptionSvc)

	api := app.Group("/api/v1")

	r.registerAuthRoutes(api, authH, authRequired)
	r.registerCatalogRoutes(api, catalogH, authRequired, requirePerm)
	r.registerBookingRoutes(api, bookingH, appointmentH, authRequired, requirePerm)
	r.registerPrescriptionRoutes(api, prescriptionH, authRequired, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}

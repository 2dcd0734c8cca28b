package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medibook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/medibook_backend/pkg/authorize"
)

func (r *Router) registerPrescriptionRoutes(
	api fiber.Router,
	h *handler.PrescriptionHandler,
	authRequired fiber.Handler,
	requirePerm permFunc,
) {
	api.Get("/prescriptions/options", h.Options)

	rx := api.Group("/appointments/:id/prescriptions", authRequired)
	rx.Post("/", requirePerm(authorize.ResourcePrescription, authorize.ActionCreate), h.Prescribe)
	rx.Get("/", requirePerm(authorize.ResourcePrescription, authorize.ActionList), h.List)
}

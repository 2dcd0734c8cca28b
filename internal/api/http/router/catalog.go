package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medibook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/medibook_backend/pkg/authorize"
)

func (r *Router) registerCatalogRoutes(
	api fiber.Router,
	h *handler.CatalogHandler,
	authRequired fiber.Handler,
	requirePerm permFunc,
) {
	api.Get("/specialties", h.ListSpecialties)
	api.Get("/specialties/:name/doctors", h.ListDoctors)

	api.Put("/doctors/me/image", authRequired,
		requirePerm(authorize.ResourceDoctorProfile, authorize.ActionUpdate), h.UploadImage)
	api.Get("/doctors/:id", h.GetDoctor)
}

package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medibook_backend/internal/api/http/handler"
)

func (r *Router) registerAuthRoutes(api fiber.Router, h *handler.AuthHandler, authRequired fiber.Handler) {
	group := api.Group("/auth")
	group.Post("/patients/register", h.RegisterPatient)
	group.Post("/patients/login", h.LoginPatient)
	group.Post("/doctors/register", h.RegisterDoctor)
	group.Post("/doctors/login", h.LoginDoctor)
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", authRequired, h.Logout)
	group.Get("/me", authRequired, h.Me)
}

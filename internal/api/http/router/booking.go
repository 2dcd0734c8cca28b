package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medibook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/medibook_backend/pkg/authorize"
)

func (r *Router) registerBookingRoutes(
	api fiber.Router,
	bh *handler.BookingHandler,
	ah *handler.AppointmentHandler,
	authRequired fiber.Handler,
	requirePerm permFunc,
) {
	api.Post("/bookings", authRequired, requirePerm(authorize.ResourceBooking, authorize.ActionCreate), bh.Book)

	listAppts := requirePerm(authorize.ResourceAppointment, authorize.ActionList)
	api.Get("/patients/me/appointments", authRequired, listAppts, ah.ListForPatient)
	api.Get("/doctors/me/appointments", authRequired, listAppts, ah.ListForDoctor)
	api.Get("/doctors/me/appointments/export", authRequired,
		requirePerm(authorize.ResourceAppointment, authorize.ActionExport), ah.Export)

	api.Patch("/appointments/:id/status", authRequired,
		requirePerm(authorize.ResourceAppointment, authorize.ActionUpdate), ah.UpdateStatus)
}

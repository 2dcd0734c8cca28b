package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medibook_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/service/ledger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AppointmentHandler struct {
	svc ledger.Service
}

func NewAppointmentHandler(svc ledger.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// GET /api/v1/patients/me/appointments
func (h *AppointmentHandler) ListForPatient(c fiber.Ctx) error {
	sess, valid := middleware.SessionFromFiber(c)
	if !valid || !sess.IsPatient() {
		return forbidden(c)
	}

	list, err := h.svc.GetByPatient(c.Context(), sess.SubjectID)
	if err != nil {
		return mapLedgerError(c, err)
	}
	return ok(c, list)
}

// GET /api/v1/doctors/me/appointments
func (h *AppointmentHandler) ListForDoctor(c fiber.Ctx) error {
	sess, valid := middleware.SessionFromFiber(c)
	if !valid || !sess.IsDoctor() {
		return forbidden(c)
	}

	list, err := h.svc.GetByDoctor(c.Context(), sess.SubjectID)
	if err != nil {
		return mapLedgerError(c, err)
	}
	return ok(c, list)
}

// GET /api/v1/doctors/me/appointments/export
func (h *AppointmentHandler) Export(c fiber.Ctx) error {
	sess, valid := middleware.SessionFromFiber(c)
	if !valid || !sess.IsDoctor() {
		return forbidden(c)
	}

	data, err := h.svc.ExportDoctorAppointments(c.Context(), sess.SubjectID)
	if err != nil {
		return mapLedgerError(c, err)
	}

	name := fmt.Sprintf("appointments-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(data)
}

// PATCH /api/v1/appointments/:id/status
func (h *AppointmentHandler) UpdateStatus(c fiber.Ctx) error {
	sess, valid := middleware.SessionFromFiber(c)
	if !valid || !sess.IsDoctor() {
		return forbidden(c)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	id := c.Params("id")
	appt, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapLedgerError(c, err)
	}
	if appt.DoctorID != sess.SubjectID {
		return forbidden(c)
	}

	updated, err := h.svc.UpdateStatus(c.Context(), id, repo.AppointmentStatus(strings.ToLower(strings.TrimSpace(body.Status))))
	if err != nil {
		return mapLedgerError(c, err)
	}
	return ok(c, updated)
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapLedgerError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrValidationFailed):
		return badRequest(c, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, ledger.ErrConflict),
		errors.Is(err, ledger.ErrInvalidTransition):
		return conflict(c, err.Error())
	default:
		return unexpected(c, err)
	}
}

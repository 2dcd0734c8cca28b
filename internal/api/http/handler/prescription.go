package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/samber/lo"

	"github.com/Alijeyrad/medibook_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/medibook_backend/internal/service/prescription"
)

type PrescriptionHandler struct {
	svc prescription.Service
}

func NewPrescriptionHandler(svc prescription.Service) *PrescriptionHandler {
	return &PrescriptionHandler{svc: svc}
}

// POST /api/v1/appointments/:id/prescriptions
func (h *PrescriptionHandler) Prescribe(c fiber.Ctx) error {
	sess, valid := middleware.SessionFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		PatientPhone string              `json:"patient_phone"`
		Items        []prescription.Item `json:"items"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	ack, err := h.svc.Prescribe(c.Context(), sess, prescription.PrescribeRequest{
		AppointmentID: c.Params("id"),
		PatientPhone:  body.PatientPhone,
		Items:         body.Items,
	})
	if err != nil {
		return mapPrescriptionError(c, err, ack)
	}
	return created(c, ack)
}

// GET /api/v1/appointments/:id/prescriptions
func (h *PrescriptionHandler) List(c fiber.Ctx) error {
	sess, valid := middleware.SessionFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	list, err := h.svc.ListSchedules(c.Context(), sess, c.Params("id"))
	if err != nil {
		return mapPrescriptionError(c, err, nil)
	}
	return ok(c, list)
}

// GET /api/v1/prescriptions/options
func (h *PrescriptionHandler) Options(c fiber.Ctx) error {
	return ok(c, fiber.Map{
		"timings":   prescription.TimingOptions,
		"durations": prescription.DurationOptions,
	})
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapPrescriptionError(c fiber.Ctx, err error, ack *prescription.Ack) error {
	var partial *prescription.PartialFailureError
	switch {
	case errors.As(err, &partial):
		failures := lo.Map(partial.Failures, func(f prescription.ItemFailure, _ int) fiber.Map {
			return fiber.Map{
				"index":    f.Index,
				"medicine": f.Medicine,
				"stage":    f.Stage,
				"error":    errString(f.Err),
			}
		})
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":     prescription.ErrPartialFailure.Error(),
			"persisted": partial.Persisted,
			"notified":  partial.Notified,
			"failures":  failures,
			"data":      ack,
		})
	case errors.Is(err, prescription.ErrValidationFailed):
		return badRequest(c, err.Error())
	case errors.Is(err, prescription.ErrNotDoctor),
		errors.Is(err, prescription.ErrForbidden):
		return fail(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, prescription.ErrNotFound):
		return notFound(c, err.Error())
	default:
		return unexpected(c, err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

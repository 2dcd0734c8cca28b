package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/medibook_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/medibook_backend/internal/service/booking"
	"github.com/Alijeyrad/medibook_backend/internal/service/catalog"
	"github.com/Alijeyrad/medibook_backend/internal/service/ledger"
	"github.com/Alijeyrad/medibook_backend/internal/service/payment"
	"github.com/Alijeyrad/medibook_backend/pkg/paygate"
)

type BookingHandler struct {
	svc booking.Service
}

func NewBookingHandler(svc booking.Service) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// POST /api/v1/bookings
func (h *BookingHandler) Book(c fiber.Ctx) error {
	sess, valid := middleware.SessionFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		DoctorID  string             `json:"doctor_id"`
		DiseaseID string             `json:"disease_id"`
		Amount    int64              `json:"amount"`
		Card      paygate.Instrument `json:"card"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	doctorID, err := uuid.Parse(body.DoctorID)
	if err != nil {
		return badRequest(c, "invalid doctor_id")
	}
	diseaseID, err := uuid.Parse(body.DiseaseID)
	if err != nil {
		return badRequest(c, "invalid disease_id")
	}

	conf, err := h.svc.Book(c.Context(), sess, booking.BookRequest{
		DoctorID:   doctorID,
		DiseaseID:  diseaseID,
		Amount:     body.Amount,
		Instrument: body.Card,
	})
	if err != nil {
		return mapBookingError(c, err)
	}
	return created(c, conf)
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapBookingError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, booking.ErrNotPatient):
		return forbidden(c)
	case errors.Is(err, payment.ErrDeclined):
		return paymentRequired(c, err.Error())
	case errors.Is(err, payment.ErrGatewayTimeout):
		return gatewayTimeout(c, err.Error())
	case errors.Is(err, payment.ErrGatewayFailure):
		return badGateway(c, err.Error())
	case errors.Is(err, payment.ErrInvalidRequest),
		errors.Is(err, booking.ErrInvalidAmount),
		errors.Is(err, booking.ErrSpecialtyMismatch),
		errors.Is(err, ledger.ErrValidationFailed):
		return badRequest(c, err.Error())
	case errors.Is(err, catalog.ErrDoctorNotFound),
		errors.Is(err, catalog.ErrSpecialtyNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, ledger.ErrConflict):
		return conflict(c, err.Error())
	default:
		return unexpected(c, err)
	}
}

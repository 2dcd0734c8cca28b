package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medibook_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/medibook_backend/internal/service/identity"
)

type AuthHandler struct {
	svc identity.Service
}

func NewAuthHandler(svc identity.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// POST /api/v1/auth/patients/register
func (h *AuthHandler) RegisterPatient(c fiber.Ctx) error {
	var body struct {
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.RegisterPatient(c.Context(), identity.RegisterPatientRequest{
		Name:     body.Name,
		Phone:    body.Phone,
		Password: body.Password,
	})
	if err != nil {
		return mapIdentityError(c, err)
	}

	return created(c, p)
}

// POST /api/v1/auth/patients/login
func (h *AuthHandler) LoginPatient(c fiber.Ctx) error {
	var body struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	tokens, err := h.svc.AuthenticatePatient(c.Context(), body.Phone, body.Password)
	if err != nil {
		return mapIdentityError(c, err)
	}
	return ok(c, tokens)
}

// POST /api/v1/auth/doctors/register
func (h *AuthHandler) RegisterDoctor(c fiber.Ctx) error {
	var body struct {
		Name       string  `json:"name"`
		Email      string  `json:"email"`
		Password   string  `json:"password"`
		Specialty  string  `json:"specialty"`
		Experience string  `json:"experience"`
		Rating     float64 `json:"rating"`
		Image      string  `json:"image"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	d, err := h.svc.RegisterDoctor(c.Context(), identity.RegisterDoctorRequest{
		Name:       body.Name,
		Email:      body.Email,
		Password:   body.Password,
		Specialty:  body.Specialty,
		Experience: body.Experience,
		Rating:     body.Rating,
		Image:      body.Image,
	})
	if err != nil {
		return mapIdentityError(c, err)
	}

	return created(c, d)
}

// POST /api/v1/auth/doctors/login
func (h *AuthHandler) LoginDoctor(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	tokens, err := h.svc.AuthenticateDoctor(c.Context(), body.Email, body.Password)
	if err != nil {
		return mapIdentityError(c, err)
	}
	return ok(c, tokens)
}

// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.RefreshToken == "" {
		return badRequest(c, "refresh_token is required")
	}

	tokens, err := h.svc.Refresh(c.Context(), body.RefreshToken)
	if err != nil {
		return mapIdentityError(c, err)
	}
	return ok(c, tokens)
}

// POST /api/v1/auth/logout  (requires AuthRequired middleware)
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	sess, valid := middleware.SessionFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	if err := h.svc.Logout(c.Context(), sess.ID); err != nil {
		return mapIdentityError(c, err)
	}
	return noContent(c)
}

// GET /api/v1/auth/me  (requires AuthRequired middleware)
func (h *AuthHandler) Me(c fiber.Ctx) error {
	sess, valid := middleware.SessionFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	return ok(c, sess)
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapIdentityError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, identity.ErrConflict):
		return conflict(c, err.Error())
	case errors.Is(err, identity.ErrInvalidPhone),
		errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrPasswordTooShort),
		errors.Is(err, identity.ErrNameRequired),
		errors.Is(err, identity.ErrUnknownSpecialty):
		return badRequest(c, err.Error())
	case errors.Is(err, identity.ErrInvalidCredential),
		errors.Is(err, identity.ErrInvalidToken),
		errors.Is(err, identity.ErrSessionNotFound):
		return fail(c, fiber.StatusUnauthorized, err.Error())
	default:
		return unexpected(c, err)
	}
}

func unexpected(c fiber.Ctx, err error) error {
	slog.Error("http: unhandled service error", "path", c.Path(), "err", err)
	return internalError(c)
}

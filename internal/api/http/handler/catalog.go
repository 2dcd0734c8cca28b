package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/medibook_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/service/catalog"
)

type CatalogHandler struct {
	svc catalog.Service
}

func NewCatalogHandler(svc catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// doctorCard is the public view of a doctor.
type doctorCard struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Specialty  string    `json:"specialty"`
	Experience string    `json:"experience"`
	Rating     float64   `json:"rating"`
	Image      string    `json:"image"`
}

func toDoctorCard(d *repo.Doctor, _ int) doctorCard {
	return doctorCard{
		ID:         d.ID,
		Name:       d.Name,
		Specialty:  d.Specialty,
		Experience: d.Experience,
		Rating:     d.Rating,
		Image:      d.Image,
	}
}

// GET /api/v1/specialties
func (h *CatalogHandler) ListSpecialties(c fiber.Ctx) error {
	list, err := h.svc.ListSpecialties(c.Context())
	if err != nil {
		return mapCatalogError(c, err)
	}
	return ok(c, list)
}

// GET /api/v1/specialties/:name/doctors
func (h *CatalogHandler) ListDoctors(c fiber.Ctx) error {
	name := strings.TrimSpace(c.Params("name"))
	if name == "" {
		return badRequest(c, "specialty name is required")
	}

	doctors, err := h.svc.ListDoctors(c.Context(), name)
	if err != nil {
		return mapCatalogError(c, err)
	}
	return ok(c, lo.Map(doctors, toDoctorCard))
}

// GET /api/v1/doctors/:id
func (h *CatalogHandler) GetDoctor(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid doctor id")
	}

	d, err := h.svc.GetDoctor(c.Context(), id)
	if err != nil {
		return mapCatalogError(c, err)
	}
	return ok(c, toDoctorCard(d, 0))
}

// PUT /api/v1/doctors/me/image  (multipart, field "image")
func (h *CatalogHandler) UploadImage(c fiber.Ctx) error {
	sess, valid := middleware.SessionFromFiber(c)
	if !valid || !sess.IsDoctor() {
		return forbidden(c)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "image file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "cannot read image")
	}
	defer f.Close()

	d, err := h.svc.SetDoctorImage(c.Context(), sess.SubjectID, fh.Header.Get(fiber.HeaderContentType), f, fh.Size)
	if err != nil {
		return mapCatalogError(c, err)
	}
	return ok(c, toDoctorCard(d, 0))
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapCatalogError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, catalog.ErrSpecialtyNotFound),
		errors.Is(err, catalog.ErrDoctorNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, catalog.ErrUnsupportedImage):
		return fail(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, catalog.ErrImageTooLarge):
		return fail(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, catalog.ErrImageStorageDisabled):
		return fail(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		return unexpected(c, err)
	}
}

package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/Alijeyrad/medibook_backend/internal/repo"
)

// MaxImageBytes bounds doctor profile uploads.
const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageStore uploads an object and returns its public URL. *s3.Client
// satisfies it.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	ListSpecialties(ctx context.Context) ([]*repo.Specialty, error)
	GetSpecialty(ctx context.Context, id uuid.UUID) (*repo.Specialty, error)
	GetSpecialtyByName(ctx context.Context, name string) (*repo.Specialty, error)
	ListDoctors(ctx context.Context, specialtyName string) ([]*repo.Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*repo.Doctor, error)
	SetDoctorImage(ctx context.Context, doctorID uuid.UUID, contentType string, body io.Reader, size int64) (*repo.Doctor, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type catalogService struct {
	db     *repo.Client
	images ImageStore
}

// New accepts a nil images store; SetDoctorImage then fails with
// ErrImageStorageDisabled.
func New(db *repo.Client, images ImageStore) Service {
	return &catalogService{db: db, images: images}
}

func (s *catalogService) ListSpecialties(ctx context.Context) ([]*repo.Specialty, error) {
	out, err := s.db.Specialty.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list specialties: %w", err)
	}
	return out, nil
}

func (s *catalogService) GetSpecialty(ctx context.Context, id uuid.UUID) (*repo.Specialty, error) {
	sp, err := s.db.Specialty.GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrSpecialtyNotFound
		}
		return nil, fmt.Errorf("get specialty: %w", err)
	}
	return sp, nil
}

func (s *catalogService) GetSpecialtyByName(ctx context.Context, name string) (*repo.Specialty, error) {
	sp, err := s.db.Specialty.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrSpecialtyNotFound
		}
		return nil, fmt.Errorf("get specialty: %w", err)
	}
	return sp, nil
}

// ListDoctors returns the doctors of a specialty, highest rating first. An
// unknown specialty is reported rather than returning an empty list.
func (s *catalogService) ListDoctors(ctx context.Context, specialtyName string) ([]*repo.Doctor, error) {
	sp, err := s.GetSpecialtyByName(ctx, specialtyName)
	if err != nil {
		return nil, err
	}
	out, err := s.db.Doctor.ListBySpecialty(ctx, sp.Name)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return out, nil
}

func (s *catalogService) GetDoctor(ctx context.Context, id uuid.UUID) (*repo.Doctor, error) {
	d, err := s.db.Doctor.GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	return d, nil
}

func (s *catalogService) SetDoctorImage(ctx context.Context, doctorID uuid.UUID, contentType string, body io.Reader, size int64) (*repo.Doctor, error) {
	if s.images == nil {
		return nil, ErrImageStorageDisabled
	}
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedImage, contentType)
	}
	if size <= 0 || size > MaxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, size)
	}

	d, err := s.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("doctors/%s/profile-%s%s", d.ID, repo.NewID(), ext)
	url, err := s.images.Upload(ctx, key, contentType, body, size)
	if err != nil {
		return nil, fmt.Errorf("upload doctor image: %w", err)
	}
	if err := s.db.Doctor.SetImage(ctx, d.ID, url); err != nil {
		return nil, fmt.Errorf("set doctor image: %w", err)
	}
	d.Image = url
	return d, nil
}

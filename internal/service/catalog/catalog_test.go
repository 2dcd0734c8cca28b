package catalog

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medibook_backend/internal/repo"
)

type fakeImages struct {
	keys []string
	body string
	err  error
}

func (f *fakeImages) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(body)
	f.keys = append(f.keys, key)
	f.body = string(b)
	return "https://cdn.example.com/medibook/" + key, nil
}

func seedCatalog(t *testing.T) (*repo.Client, []*repo.Doctor) {
	t.Helper()
	ctx := context.Background()
	db := repo.NewMemoryClient()
	for _, name := range []string{"Neurology", "Cardiology", "Dermatology"} {
		require.NoError(t, db.Specialty.Create(ctx, &repo.Specialty{Name: name}))
	}
	doctors := []*repo.Doctor{
		{Name: "Dr. Lisa Anderson", Email: "lisa@hospital.com", Specialty: "Cardiology", Rating: 4.6},
		{Name: "Dr. Sarah Johnson", Email: "sarah@hospital.com", Specialty: "Cardiology", Rating: 4.8},
		{Name: "Dr. Michael Chen", Email: "michael@hospital.com", Specialty: "Neurology", Rating: 4.9},
	}
	for _, d := range doctors {
		require.NoError(t, db.Doctor.Create(ctx, d))
	}
	return db, doctors
}

func TestListSpecialties_ByName(t *testing.T) {
	db, _ := seedCatalog(t)
	svc := New(db, nil)

	out, err := svc.ListSpecialties(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "Cardiology", out[0].Name)
	assert.Equal(t, "Neurology", out[2].Name)

	sp, err := svc.GetSpecialty(context.Background(), out[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Dermatology", sp.Name)

	_, err = svc.GetSpecialty(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSpecialtyNotFound)
}

func TestListDoctors_RatingDesc(t *testing.T) {
	db, _ := seedCatalog(t)
	svc := New(db, nil)

	out, err := svc.ListDoctors(context.Background(), "Cardiology")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Dr. Sarah Johnson", out[0].Name)
	assert.Equal(t, "Dr. Lisa Anderson", out[1].Name)

	out, err = svc.ListDoctors(context.Background(), "Dermatology")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = svc.ListDoctors(context.Background(), "Astrology")
	assert.ErrorIs(t, err, ErrSpecialtyNotFound)
}

func TestGetDoctor(t *testing.T) {
	db, doctors := seedCatalog(t)
	svc := New(db, nil)

	d, err := svc.GetDoctor(context.Background(), doctors[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Michael Chen", d.Name)

	_, err = svc.GetDoctor(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestSetDoctorImage(t *testing.T) {
	db, doctors := seedCatalog(t)
	images := &fakeImages{}
	svc := New(db, images)
	ctx := context.Background()

	d, err := svc.SetDoctorImage(ctx, doctors[0].ID, "image/png", strings.NewReader("png-bytes"), 9)
	require.NoError(t, err)
	require.Len(t, images.keys, 1)
	assert.True(t, strings.HasPrefix(images.keys[0], "doctors/"+doctors[0].ID.String()+"/profile-"))
	assert.True(t, strings.HasSuffix(images.keys[0], ".png"))
	assert.Equal(t, "png-bytes", images.body)

	stored, err := svc.GetDoctor(ctx, doctors[0].ID)
	require.NoError(t, err)
	assert.Equal(t, d.Image, stored.Image)
}

func TestSetDoctorImage_Errors(t *testing.T) {
	db, doctors := seedCatalog(t)
	ctx := context.Background()

	_, err := New(db, nil).SetDoctorImage(ctx, doctors[0].ID, "image/png", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrImageStorageDisabled)

	svc := New(db, &fakeImages{})
	_, err = svc.SetDoctorImage(ctx, doctors[0].ID, "application/pdf", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = svc.SetDoctorImage(ctx, doctors[0].ID, "image/jpeg", strings.NewReader("x"), MaxImageBytes+1)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = svc.SetDoctorImage(ctx, uuid.New(), "image/jpeg", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	uploadErr := errors.New("bucket unavailable")
	_, err = New(db, &fakeImages{err: uploadErr}).SetDoctorImage(ctx, doctors[0].ID, "image/jpeg", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, uploadErr)
}

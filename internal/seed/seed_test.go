package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/service/identity"
	"github.com/Alijeyrad/medibook_backend/pkg/util/password"
)

func newIdentity(db *repo.Client) identity.Service {
	hasher := password.NewHasher(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1})
	cfg := &config.Config{Identity: config.IdentityConfig{DefaultRegion: "IN"}}
	// registration touches neither sessions nor tokens
	return identity.New(db, nil, nil, hasher, cfg)
}

func TestDoctorEmail(t *testing.T) {
	assert.Equal(t, "sarah@hospital.com", DoctorEmail("Dr. Sarah Johnson"))
	assert.Equal(t, "michael@hospital.com", DoctorEmail("Dr. Michael Chen"))
	assert.Equal(t, "", DoctorEmail("Dr. "))
}

func TestRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := repo.NewMemoryClient()
	ids := newIdentity(db)

	res, err := Run(ctx, db, ids)
	require.NoError(t, err)
	assert.Equal(t, Result{Specialties: 8, Doctors: 6, Patients: 2}, res)

	res, err = Run(ctx, db, ids)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	cardio, err := db.Doctor.ListBySpecialty(ctx, "Cardiology")
	require.NoError(t, err)
	require.Len(t, cardio, 2)
	assert.Equal(t, "Dr. Michael Chen", cardio[0].Name, "highest rating first")

	d, err := db.Doctor.GetByEmail(ctx, "sarah@hospital.com")
	require.NoError(t, err)
	assert.Equal(t, "15 years", d.Experience)

	p, err := db.Patient.GetByPhone(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", p.Name)
}

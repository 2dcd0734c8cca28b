// Package seed loads the demo catalog and accounts. Running it twice is
// harmless: rows that already exist are skipped.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/service/identity"
)

const (
	DemoPatientPassword = "password123"
	DemoDoctorPassword  = "doctor123"
)

var Specialties = []repo.Specialty{
	{Name: "Cardiology", Description: "Heart and cardiovascular conditions"},
	{Name: "Dermatology", Description: "Skin, hair, and nail disorders"},
	{Name: "Orthopedics", Description: "Bone and joint conditions"},
	{Name: "Pediatrics", Description: "Children's health and development"},
	{Name: "Ophthalmology", Description: "Eye and vision care"},
	{Name: "ENT", Description: "Ear, nose, and throat conditions"},
	{Name: "Gastroenterology", Description: "Digestive system disorders"},
	{Name: "Neurology", Description: "Brain and nervous system conditions"},
}

var Doctors = []identity.RegisterDoctorRequest{
	{Name: "Dr. Sarah Johnson", Specialty: "Cardiology", Experience: "15 years", Rating: 4.8,
		Image: "https://images.pexels.com/photos/5215024/pexels-photo-5215024.jpeg?auto=compress&cs=tinysrgb&w=400"},
	{Name: "Dr. Michael Chen", Specialty: "Cardiology", Experience: "12 years", Rating: 4.9,
		Image: "https://images.pexels.com/photos/6234516/pexels-photo-6234516.jpeg?auto=compress&cs=tinysrgb&w=400"},
	{Name: "Dr. Emily Rodriguez", Specialty: "Dermatology", Experience: "10 years", Rating: 4.7,
		Image: "https://images.pexels.com/photos/5668473/pexels-photo-5668473.jpeg?auto=compress&cs=tinysrgb&w=400"},
	{Name: "Dr. James Wilson", Specialty: "Dermatology", Experience: "8 years", Rating: 4.6,
		Image: "https://images.pexels.com/photos/5340280/pexels-photo-5340280.jpeg?auto=compress&cs=tinysrgb&w=400"},
	{Name: "Dr. Lisa Thompson", Specialty: "Orthopedics", Experience: "18 years", Rating: 4.9,
		Image: "https://images.pexels.com/photos/5668882/pexels-photo-5668882.jpeg?auto=compress&cs=tinysrgb&w=400"},
	{Name: "Dr. Robert Kim", Specialty: "Orthopedics", Experience: "14 years", Rating: 4.8,
		Image: "https://images.pexels.com/photos/5340281/pexels-photo-5340281.jpeg?auto=compress&cs=tinysrgb&w=400"},
}

var Patients = []identity.RegisterPatientRequest{
	{Name: "John Doe", Phone: "9876543210"},
	{Name: "Jane Smith", Phone: "9876543211"},
}

// DoctorEmail derives the login of a demo doctor from their first name,
// e.g. "Dr. Sarah Johnson" -> "sarah@hospital.com".
func DoctorEmail(name string) string {
	fields := strings.Fields(strings.TrimPrefix(name, "Dr. "))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0]) + "@hospital.com"
}

type Result struct {
	Specialties int
	Doctors     int
	Patients    int
}

// Run inserts the demo data and reports how many rows were added.
func Run(ctx context.Context, db *repo.Client, ids identity.Service) (Result, error) {
	var res Result

	for _, sp := range Specialties {
		row := sp
		err := db.Specialty.Create(ctx, &row)
		switch {
		case err == nil:
			res.Specialties++
		case repo.IsConflict(err):
		default:
			return res, fmt.Errorf("seed specialty %s: %w", sp.Name, err)
		}
	}

	for _, d := range Doctors {
		req := d
		req.Email = DoctorEmail(d.Name)
		req.Password = DemoDoctorPassword
		_, err := ids.RegisterDoctor(ctx, req)
		switch {
		case err == nil:
			res.Doctors++
		case errors.Is(err, identity.ErrConflict):
		default:
			return res, fmt.Errorf("seed doctor %s: %w", d.Name, err)
		}
	}

	for _, p := range Patients {
		req := p
		req.Password = DemoPatientPassword
		_, err := ids.RegisterPatient(ctx, req)
		switch {
		case err == nil:
			res.Patients++
		case errors.Is(err, identity.ErrConflict):
		default:
			return res, fmt.Errorf("seed patient %s: %w", p.Name, err)
		}
	}

	slog.Info("seed: demo data loaded",
		"specialties", res.Specialties,
		"doctors", res.Doctors,
		"patients", res.Patients,
	)
	return res, nil
}

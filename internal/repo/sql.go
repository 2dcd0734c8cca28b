package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var builder = entsql.Dialect(dialect.Postgres)

const (
	tablePatients          = "patients"
	tableDoctors           = "doctors"
	tableSpecialties       = "specialties"
	tableAppointments      = "appointments"
	tableMedicineSchedules = "medicine_schedules"
)

var (
	patientColumns     = []string{"id", "name", "phone", "password_hash", "created_at"}
	doctorColumns      = []string{"id", "name", "email", "specialty", "password_hash", "experience", "rating", "image", "created_at"}
	specialtyColumns   = []string{"id", "name", "description"}
	appointmentColumns = []string{
		"appointment_id", "patient_id", "doctor_id", "disease_id", "amount",
		"transaction_id", "status", "appointment_date", "created_at", "updated_at",
	}
	medicineScheduleColumns = []string{"id", "appointment_id", "medicine_name", "timing", "duration", "patient_phone", "created_at"}
)

type rowScanner interface {
	Scan(dest ...any) error
}

func exec(ctx context.Context, db *sql.DB, query string, args []any) (sql.Result, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

// ---------------------------------------------------------------------------
// patients
// ---------------------------------------------------------------------------

type patientSQL struct {
	db *sql.DB
}

func (s *patientSQL) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	q, args := builder.Insert(tablePatients).
		Columns(patientColumns...).
		Values(p.ID, p.Name, p.Phone, p.PasswordHash, p.CreatedAt).
		Query()
	if _, err := exec(ctx, s.db, q, args); err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (s *patientSQL) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.getBy(ctx, "id", id)
}

func (s *patientSQL) GetByPhone(ctx context.Context, phone string) (*Patient, error) {
	return s.getBy(ctx, "phone", phone)
}

func (s *patientSQL) getBy(ctx context.Context, column string, value any) (*Patient, error) {
	q, args := builder.Select(patientColumns...).
		From(builder.Table(tablePatients)).
		Where(entsql.EQ(column, value)).
		Query()

	var p Patient
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&p.ID, &p.Name, &p.Phone, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

// ---------------------------------------------------------------------------
// doctors
// ---------------------------------------------------------------------------

type doctorSQL struct {
	db *sql.DB
}

func (s *doctorSQL) Create(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = NewID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	d.Email = strings.ToLower(d.Email)
	q, args := builder.Insert(tableDoctors).
		Columns(doctorColumns...).
		Values(d.ID, d.Name, d.Email, d.Specialty, d.PasswordHash, d.Experience, d.Rating, d.Image, d.CreatedAt).
		Query()
	if _, err := exec(ctx, s.db, q, args); err != nil {
		return fmt.Errorf("insert doctor: %w", err)
	}
	return nil
}

func (s *doctorSQL) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.getBy(ctx, "id", id)
}

func (s *doctorSQL) GetByEmail(ctx context.Context, email string) (*Doctor, error) {
	return s.getBy(ctx, "email", strings.ToLower(email))
}

func (s *doctorSQL) getBy(ctx context.Context, column string, value any) (*Doctor, error) {
	q, args := builder.Select(doctorColumns...).
		From(builder.Table(tableDoctors)).
		Where(entsql.EQ(column, value)).
		Query()
	d, err := scanDoctor(s.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return d, nil
}

func (s *doctorSQL) ListBySpecialty(ctx context.Context, specialty string) ([]*Doctor, error) {
	q, args := builder.Select(doctorColumns...).
		From(builder.Table(tableDoctors)).
		Where(entsql.EQ("specialty", specialty)).
		OrderBy(entsql.Desc("rating"), entsql.Asc("name")).
		Query()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *doctorSQL) SetImage(ctx context.Context, id uuid.UUID, image string) error {
	q, args := builder.Update(tableDoctors).
		Set("image", image).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := exec(ctx, s.db, q, args)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDoctor(r rowScanner) (*Doctor, error) {
	var d Doctor
	if err := r.Scan(&d.ID, &d.Name, &d.Email, &d.Specialty, &d.PasswordHash, &d.Experience, &d.Rating, &d.Image, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// ---------------------------------------------------------------------------
// specialties
// ---------------------------------------------------------------------------

type specialtySQL struct {
	db *sql.DB
}

func (s *specialtySQL) Create(ctx context.Context, sp *Specialty) error {
	if sp.ID == uuid.Nil {
		sp.ID = NewID()
	}
	q, args := builder.Insert(tableSpecialties).
		Columns(specialtyColumns...).
		Values(sp.ID, sp.Name, sp.Description).
		Query()
	if _, err := exec(ctx, s.db, q, args); err != nil {
		return fmt.Errorf("insert specialty: %w", err)
	}
	return nil
}

func (s *specialtySQL) GetByID(ctx context.Context, id uuid.UUID) (*Specialty, error) {
	return s.getBy(ctx, "id", id)
}

func (s *specialtySQL) GetByName(ctx context.Context, name string) (*Specialty, error) {
	return s.getBy(ctx, "name", name)
}

func (s *specialtySQL) getBy(ctx context.Context, column string, value any) (*Specialty, error) {
	q, args := builder.Select(specialtyColumns...).
		From(builder.Table(tableSpecialties)).
		Where(entsql.EQ(column, value)).
		Query()

	var sp Specialty
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&sp.ID, &sp.Name, &sp.Description); err != nil {
		return nil, mapError(err)
	}
	return &sp, nil
}

func (s *specialtySQL) List(ctx context.Context) ([]*Specialty, error) {
	q, args := builder.Select(specialtyColumns...).
		From(builder.Table(tableSpecialties)).
		OrderBy(entsql.Asc("name")).
		Query()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []*Specialty
	for rows.Next() {
		var sp Specialty
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Description); err != nil {
			return nil, err
		}
		out = append(out, &sp)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// appointments
// ---------------------------------------------------------------------------

type appointmentSQL struct {
	db *sql.DB
}

func (s *appointmentSQL) Create(ctx context.Context, a *Appointment) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	q, args := builder.Insert(tableAppointments).
		Columns(appointmentColumns...).
		Values(
			a.AppointmentID, a.PatientID, a.DoctorID, a.DiseaseID, a.Amount,
			a.TransactionID, string(a.Status), a.AppointmentDate, a.CreatedAt, a.UpdatedAt,
		).
		Query()
	if _, err := exec(ctx, s.db, q, args); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (s *appointmentSQL) Get(ctx context.Context, appointmentID string) (*Appointment, error) {
	q, args := builder.Select(appointmentColumns...).
		From(builder.Table(tableAppointments)).
		Where(entsql.EQ("appointment_id", appointmentID)).
		Query()

	a, err := scanAppointment(s.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (s *appointmentSQL) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*DoctorAppointment, error) {
	a := builder.Table(tableAppointments).As("a")
	p := builder.Table(tablePatients).As("p")
	sp := builder.Table(tableSpecialties).As("s")

	cols := qualified(a, appointmentColumns)
	cols = append(cols, p.C("name"), p.C("phone"), sp.C("name"))

	q, args := builder.Select(cols...).
		From(a).
		Join(p).On(a.C("patient_id"), p.C("id")).
		Join(sp).On(a.C("disease_id"), sp.C("id")).
		Where(entsql.EQ(a.C("doctor_id"), doctorID)).
		OrderBy(entsql.Desc(a.C("created_at")), entsql.Desc(a.C("appointment_id"))).
		Query()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []*DoctorAppointment
	for rows.Next() {
		var da DoctorAppointment
		appt, err := scanAppointment(rows, &da.PatientName, &da.PatientPhone, &da.SpecialtyName)
		if err != nil {
			return nil, err
		}
		da.Appointment = *appt
		out = append(out, &da)
	}
	return out, rows.Err()
}

func (s *appointmentSQL) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*PatientAppointment, error) {
	a := builder.Table(tableAppointments).As("a")
	d := builder.Table(tableDoctors).As("d")
	sp := builder.Table(tableSpecialties).As("s")

	cols := qualified(a, appointmentColumns)
	cols = append(cols, d.C("name"), d.C("specialty"), d.C("image"), sp.C("name"))

	q, args := builder.Select(cols...).
		From(a).
		Join(d).On(a.C("doctor_id"), d.C("id")).
		Join(sp).On(a.C("disease_id"), sp.C("id")).
		Where(entsql.EQ(a.C("patient_id"), patientID)).
		OrderBy(entsql.Desc(a.C("created_at")), entsql.Desc(a.C("appointment_id"))).
		Query()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []*PatientAppointment
	for rows.Next() {
		var pa PatientAppointment
		appt, err := scanAppointment(rows, &pa.DoctorName, &pa.DoctorSpecialty, &pa.DoctorImage, &pa.SpecialtyName)
		if err != nil {
			return nil, err
		}
		pa.Appointment = *appt
		out = append(out, &pa)
	}
	return out, rows.Err()
}

func (s *appointmentSQL) UpdateStatus(ctx context.Context, appointmentID string, status AppointmentStatus) (*Appointment, error) {
	q, args := builder.Update(tableAppointments).
		Set("status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("appointment_id", appointmentID)).
		Query()

	res, err := exec(ctx, s.db, q, args)
	if err != nil {
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, appointmentID)
}

func (s *appointmentSQL) SwapStatus(ctx context.Context, appointmentID string, from, next AppointmentStatus) (*Appointment, error) {
	q, args := builder.Update(tableAppointments).
		Set("status", string(next)).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.And(
			entsql.EQ("appointment_id", appointmentID),
			entsql.EQ("status", string(from)),
		)).
		Query()

	res, err := exec(ctx, s.db, q, args)
	if err != nil {
		return nil, fmt.Errorf("swap appointment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Either the row is gone or its status moved on.
		if _, err := s.Get(ctx, appointmentID); err != nil {
			return nil, err
		}
		return nil, ErrStatusChanged
	}
	return s.Get(ctx, appointmentID)
}

func scanAppointment(r rowScanner, extra ...any) (*Appointment, error) {
	var (
		a      Appointment
		status string
	)
	dest := []any{
		&a.AppointmentID, &a.PatientID, &a.DoctorID, &a.DiseaseID, &a.Amount,
		&a.TransactionID, &status, &a.AppointmentDate, &a.CreatedAt, &a.UpdatedAt,
	}
	if err := r.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	a.Status = AppointmentStatus(status)
	return &a, nil
}

func qualified(t *entsql.SelectTable, columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		out = append(out, t.C(c))
	}
	return out
}

// ---------------------------------------------------------------------------
// medicine_schedules
// ---------------------------------------------------------------------------

type medicineScheduleSQL struct {
	db *sql.DB
}

func (s *medicineScheduleSQL) Create(ctx context.Context, m *MedicineSchedule) error {
	if m.ID == uuid.Nil {
		m.ID = NewID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	q, args := builder.Insert(tableMedicineSchedules).
		Columns(medicineScheduleColumns...).
		Values(m.ID, m.AppointmentID, m.MedicineName, m.Timing, m.Duration, m.PatientPhone, m.CreatedAt).
		Query()
	if _, err := exec(ctx, s.db, q, args); err != nil {
		return fmt.Errorf("insert medicine schedule: %w", err)
	}
	return nil
}

func (s *medicineScheduleSQL) ListByAppointment(ctx context.Context, appointmentID string) ([]*MedicineSchedule, error) {
	q, args := builder.Select(medicineScheduleColumns...).
		From(builder.Table(tableMedicineSchedules)).
		Where(entsql.EQ("appointment_id", appointmentID)).
		OrderBy(entsql.Asc("created_at"), entsql.Asc("id")).
		Query()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []*MedicineSchedule
	for rows.Next() {
		var m MedicineSchedule
		if err := rows.Scan(&m.ID, &m.AppointmentID, &m.MedicineName, &m.Timing, &m.Duration, &m.PatientPhone, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryState holds every entity behind one lock so joins and reference
// checks see a consistent snapshot.
type memoryState struct {
	mu sync.RWMutex

	patients     map[uuid.UUID]Patient
	doctors      map[uuid.UUID]Doctor
	specialties  map[uuid.UUID]Specialty
	appointments map[string]Appointment
	schedules    []MedicineSchedule

	// seq orders rows created within the same clock tick.
	seq     int64
	apptSeq map[string]int64
}

// NewMemoryClient returns a client that keeps all data in process memory.
// It enforces the same uniqueness and reference rules as the Postgres schema.
func NewMemoryClient() *Client {
	st := &memoryState{
		patients:     make(map[uuid.UUID]Patient),
		doctors:      make(map[uuid.UUID]Doctor),
		specialties:  make(map[uuid.UUID]Specialty),
		appointments: make(map[string]Appointment),
		apptSeq:      make(map[string]int64),
	}
	return &Client{
		Patient:          &patientMem{st: st},
		Doctor:           &doctorMem{st: st},
		Specialty:        &specialtyMem{st: st},
		Appointment:      &appointmentMem{st: st},
		MedicineSchedule: &medicineScheduleMem{st: st},
	}
}

// ---------------------------------------------------------------------------
// patients
// ---------------------------------------------------------------------------

type patientMem struct{ st *memoryState }

func (m *patientMem) Create(_ context.Context, p *Patient) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	for _, existing := range m.st.patients {
		if existing.Phone == p.Phone {
			return &constraintError{kind: ErrConflict, constraint: "patients_phone_key"}
		}
	}
	if p.ID == uuid.Nil {
		p.ID = NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.st.patients[p.ID] = *p
	return nil
}

func (m *patientMem) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()

	p, ok := m.st.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *patientMem) GetByPhone(_ context.Context, phone string) (*Patient, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()

	for _, p := range m.st.patients {
		if p.Phone == phone {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// ---------------------------------------------------------------------------
// doctors
// ---------------------------------------------------------------------------

type doctorMem struct{ st *memoryState }

func (m *doctorMem) Create(_ context.Context, d *Doctor) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	d.Email = strings.ToLower(d.Email)
	for _, existing := range m.st.doctors {
		if existing.Email == d.Email {
			return &constraintError{kind: ErrConflict, constraint: "doctors_email_key"}
		}
	}
	if d.ID == uuid.Nil {
		d.ID = NewID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	m.st.doctors[d.ID] = *d
	return nil
}

func (m *doctorMem) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()

	d, ok := m.st.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (m *doctorMem) GetByEmail(_ context.Context, email string) (*Doctor, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()

	email = strings.ToLower(email)
	for _, d := range m.st.doctors {
		if d.Email == email {
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *doctorMem) ListBySpecialty(_ context.Context, specialty string) ([]*Doctor, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()

	var out []*Doctor
	for _, d := range m.st.doctors {
		if d.Specialty == specialty {
			d := d
			out = append(out, &d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *doctorMem) SetImage(_ context.Context, id uuid.UUID, image string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	d, ok := m.st.doctors[id]
	if !ok {
		return ErrNotFound
	}
	d.Image = image
	m.st.doctors[id] = d
	return nil
}

// ---------------------------------------------------------------------------
// specialties
// ---------------------------------------------------------------------------

type specialtyMem struct{ st *memoryState }

func (m *specialtyMem) Create(_ context.Context, sp *Specialty) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	for _, existing := range m.st.specialties {
		if existing.Name == sp.Name {
			return &constraintError{kind: ErrConflict, constraint: "specialties_name_key"}
		}
	}
	if sp.ID == uuid.Nil {
		sp.ID = NewID()
	}
	m.st.specialties[sp.ID] = *sp
	return nil
}

func (m *specialtyMem) GetByID(_ context.Context, id uuid.UUID) (*Specialty, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()

	sp, ok := m.st.specialties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sp, nil
}

func (m *specialtyMem) GetByName(_ context.Context, name string) (*Specialty, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()

	for _, sp := range m.st.specialties {
		if sp.Name == name {
			return &sp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *specialtyMem) List(_ context.Context) ([]*Specialty, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()

	out := make([]*Specialty, 0, len(m.st.specialties))
	for _, sp := range m.st.specialties {
		sp := sp
		out = append(out, &sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---------------------------------------------------------------------------
// appointments
// ---------------------------------------------------------------------------

type appointmentMem struct{ st *memoryState }

func (m *appointmentMem) Create(_ context.Context, a *Appointment) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	if _, ok := m.st.patients[a.PatientID]; !ok {
		return &constraintError{kind: ErrInvalidReference, constraint: "appointments_patients_appointments"}
	}
	if _, ok := m.st.doctors[a.DoctorID]; !ok {
		return &constraintError{kind: ErrInvalidReference, constraint: "appointments_doctors_appointments"}
	}
	if _, ok := m.st.specialties[a.DiseaseID]; !ok {
		return &constraintError{kind: ErrInvalidReference, constraint: "appointments_specialties_appointments"}
	}
	if _, ok := m.st.appointments[a.AppointmentID]; ok {
		return &constraintError{kind: ErrConflict, constraint: "appointments_pkey"}
	}
	for _, existing := range m.st.appointments {
		if existing.TransactionID == a.TransactionID {
			return &constraintError{kind: ErrConflict, constraint: "appointments_transaction_id_key"}
		}
	}

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	m.st.seq++
	m.st.apptSeq[a.AppointmentID] = m.st.seq
	m.st.appointments[a.AppointmentID] = *a
	return nil
}

func (m *appointmentMem) Get(_ context.Context, appointmentID string) (*Appointment, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()

	a, ok := m.st.appointments[appointmentID]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *appointmentMem) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*DoctorAppointment, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()

	var out []*DoctorAppointment
	for _, a := range m.sortedLocked() {
		if a.DoctorID != doctorID {
			continue
		}
		p := m.st.patients[a.PatientID]
		sp := m.st.specialties[a.DiseaseID]
		out = append(out, &DoctorAppointment{
			Appointment:   a,
			PatientName:   p.Name,
			PatientPhone:  p.Phone,
			SpecialtyName: sp.Name,
		})
	}
	return out, nil
}

func (m *appointmentMem) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*PatientAppointment, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()

	var out []*PatientAppointment
	for _, a := range m.sortedLocked() {
		if a.PatientID != patientID {
			continue
		}
		d := m.st.doctors[a.DoctorID]
		sp := m.st.specialties[a.DiseaseID]
		out = append(out, &PatientAppointment{
			Appointment:     a,
			DoctorName:      d.Name,
			DoctorSpecialty: d.Specialty,
			DoctorImage:     d.Image,
			SpecialtyName:   sp.Name,
		})
	}
	return out, nil
}

func (m *appointmentMem) UpdateStatus(_ context.Context, appointmentID string, status AppointmentStatus) (*Appointment, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	a, ok := m.st.appointments[appointmentID]
	if !ok {
		return nil, ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	m.st.appointments[appointmentID] = a
	return &a, nil
}

func (m *appointmentMem) SwapStatus(_ context.Context, appointmentID string, from, next AppointmentStatus) (*Appointment, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	a, ok := m.st.appointments[appointmentID]
	if !ok {
		return nil, ErrNotFound
	}
	if a.Status != from {
		return nil, ErrStatusChanged
	}
	a.Status = next
	a.UpdatedAt = time.Now().UTC()
	m.st.appointments[appointmentID] = a
	return &a, nil
}

// sortedLocked returns appointments newest first. Rows with equal
// created_at fall back to insertion order, newest first.
func (m *appointmentMem) sortedLocked() []Appointment {
	out := make([]Appointment, 0, len(m.st.appointments))
	for _, a := range m.st.appointments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return m.st.apptSeq[out[i].AppointmentID] > m.st.apptSeq[out[j].AppointmentID]
	})
	return out
}

// ---------------------------------------------------------------------------
// medicine_schedules
// ---------------------------------------------------------------------------

type medicineScheduleMem struct{ st *memoryState }

func (m *medicineScheduleMem) Create(_ context.Context, ms *MedicineSchedule) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	if _, ok := m.st.appointments[ms.AppointmentID]; !ok {
		return &constraintError{kind: ErrInvalidReference, constraint: "medicine_schedules_appointments_medicine_schedules"}
	}
	if ms.ID == uuid.Nil {
		ms.ID = NewID()
	}
	if ms.CreatedAt.IsZero() {
		ms.CreatedAt = time.Now().UTC()
	}
	m.st.schedules = append(m.st.schedules, *ms)
	return nil
}

func (m *medicineScheduleMem) ListByAppointment(_ context.Context, appointmentID string) ([]*MedicineSchedule, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()

	var out []*MedicineSchedule
	for _, ms := range m.st.schedules {
		if ms.AppointmentID == appointmentID {
			ms := ms
			out = append(out, &ms)
		}
	}
	return out, nil
}

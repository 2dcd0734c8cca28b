// Package migrate holds the table definitions for the ent schemas in
// internal/schema, laid out the way ent generates them.
package migrate

import (
	"context"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// PatientsColumns holds the columns for the "patients" table.
	PatientsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString},
		{Name: "phone", Type: field.TypeString, Unique: true, Size: 32},
		{Name: "password_hash", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	// PatientsTable holds the schema information for the "patients" table.
	PatientsTable = &schema.Table{
		Name:       "patients",
		Columns:    PatientsColumns,
		PrimaryKey: []*schema.Column{PatientsColumns[0]},
	}

	// SpecialtiesColumns holds the columns for the "specialties" table.
	SpecialtiesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "description", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// SpecialtiesTable holds the schema information for the "specialties" table.
	SpecialtiesTable = &schema.Table{
		Name:       "specialties",
		Columns:    SpecialtiesColumns,
		PrimaryKey: []*schema.Column{SpecialtiesColumns[0]},
	}

	// DoctorsColumns holds the columns for the "doctors" table.
	DoctorsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "specialty", Type: field.TypeString},
		{Name: "password_hash", Type: field.TypeString},
		{Name: "experience", Type: field.TypeString, Default: ""},
		{Name: "rating", Type: field.TypeFloat64, Default: 0},
		{Name: "image", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	// DoctorsTable holds the schema information for the "doctors" table.
	DoctorsTable = &schema.Table{
		Name:       "doctors",
		Columns:    DoctorsColumns,
		PrimaryKey: []*schema.Column{DoctorsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "doctor_specialty_rating",
				Unique:  false,
				Columns: []*schema.Column{DoctorsColumns[3], DoctorsColumns[6]},
			},
		},
	}

	// AppointmentsColumns holds the columns for the "appointments" table.
	AppointmentsColumns = []*schema.Column{
		{Name: "appointment_id", Type: field.TypeString, Size: 64},
		{Name: "amount", Type: field.TypeInt64},
		{Name: "transaction_id", Type: field.TypeString, Unique: true},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"pending", "confirmed", "completed", "cancelled"}, Default: "pending"},
		{Name: "appointment_date", Type: field.TypeTime},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "patient_id", Type: field.TypeUUID},
		{Name: "doctor_id", Type: field.TypeUUID},
		{Name: "disease_id", Type: field.TypeUUID},
	}
	// AppointmentsTable holds the schema information for the "appointments" table.
	AppointmentsTable = &schema.Table{
		Name:       "appointments",
		Columns:    AppointmentsColumns,
		PrimaryKey: []*schema.Column{AppointmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "appointments_patients_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[7]},
				RefColumns: []*schema.Column{PatientsColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "appointments_doctors_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[8]},
				RefColumns: []*schema.Column{DoctorsColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "appointments_specialties_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[9]},
				RefColumns: []*schema.Column{SpecialtiesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "appointment_doctor_id_created_at",
				Unique:  false,
				Columns: []*schema.Column{AppointmentsColumns[8], AppointmentsColumns[5]},
			},
			{
				Name:    "appointment_patient_id_created_at",
				Unique:  false,
				Columns: []*schema.Column{AppointmentsColumns[7], AppointmentsColumns[5]},
			},
		},
	}

	// MedicineSchedulesColumns holds the columns for the "medicine_schedules" table.
	MedicineSchedulesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "medicine_name", Type: field.TypeString},
		{Name: "timing", Type: field.TypeString},
		{Name: "duration", Type: field.TypeString},
		{Name: "patient_phone", Type: field.TypeString, Size: 32},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "appointment_id", Type: field.TypeString, Size: 64},
	}
	// MedicineSchedulesTable holds the schema information for the "medicine_schedules" table.
	MedicineSchedulesTable = &schema.Table{
		Name:       "medicine_schedules",
		Columns:    MedicineSchedulesColumns,
		PrimaryKey: []*schema.Column{MedicineSchedulesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "medicine_schedules_appointments_medicine_schedules",
				Columns:    []*schema.Column{MedicineSchedulesColumns[6]},
				RefColumns: []*schema.Column{AppointmentsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "medicineschedule_appointment_id",
				Unique:  false,
				Columns: []*schema.Column{MedicineSchedulesColumns[6]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		PatientsTable,
		SpecialtiesTable,
		DoctorsTable,
		AppointmentsTable,
		MedicineSchedulesTable,
	}
)

func init() {
	AppointmentsTable.ForeignKeys[0].RefTable = PatientsTable
	AppointmentsTable.ForeignKeys[1].RefTable = DoctorsTable
	AppointmentsTable.ForeignKeys[2].RefTable = SpecialtiesTable
	MedicineSchedulesTable.ForeignKeys[0].RefTable = AppointmentsTable
}

// Create runs the schema migration for every table against drv.
func Create(ctx context.Context, drv dialect.Driver, opts ...schema.MigrateOption) error {
	m, err := schema.NewMigrate(drv, opts...)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}

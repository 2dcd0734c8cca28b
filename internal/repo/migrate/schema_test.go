package migrate

import (
	"testing"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entschema "github.com/Alijeyrad/medibook_backend/internal/schema"
)

// descriptors returns the fields of s, mixins first, keyed by column name.
func descriptors(s ent.Interface) map[string]*field.Descriptor {
	out := map[string]*field.Descriptor{}
	add := func(fields []ent.Field) {
		for _, f := range fields {
			d := f.Descriptor()
			name := d.Name
			if d.StorageKey != "" {
				name = d.StorageKey
			}
			out[name] = d
		}
	}
	for _, m := range s.Mixin() {
		add(m.Fields())
	}
	add(s.Fields())
	return out
}

func columnNames(cols []*schema.Column) []string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return names
}

func TestTablesMatchEntSchemas(t *testing.T) {
	tests := []struct {
		table  *schema.Table
		schema ent.Interface
	}{
		{PatientsTable, entschema.Patient{}},
		{SpecialtiesTable, entschema.Specialty{}},
		{DoctorsTable, entschema.Doctor{}},
		{AppointmentsTable, entschema.Appointment{}},
		{MedicineSchedulesTable, entschema.MedicineSchedule{}},
	}

	for _, tt := range tests {
		t.Run(tt.table.Name, func(t *testing.T) {
			fields := descriptors(tt.schema)
			require.Len(t, tt.table.Columns, len(fields), "columns %v", columnNames(tt.table.Columns))

			for _, col := range tt.table.Columns {
				d, ok := fields[col.Name]
				require.True(t, ok, "column %s has no schema field", col.Name)
				assert.Equal(t, d.Info.Type, col.Type, col.Name)
				assert.Equal(t, d.Unique, col.Unique, col.Name)
				assert.Equal(t, int64(d.Size), col.Size, col.Name)

				var enums []string
				for _, e := range d.Enums {
					enums = append(enums, e.V)
				}
				assert.Equal(t, enums, col.Enums, col.Name)
			}

			var want [][]string
			for _, idx := range tt.schema.Indexes() {
				want = append(want, idx.Descriptor().Fields)
			}
			var got [][]string
			for _, idx := range tt.table.Indexes {
				got = append(got, columnNames(idx.Columns))
			}
			assert.ElementsMatch(t, want, got)
		})
	}
}

package constants

const (
	AppName = "medibook"

	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "MEDIBOOK"
)

// NATS subjects. The trailing token is the entity the event is keyed on.
const (
	SubjectAppointmentCreated       = "medibook.appointment.created"
	SubjectAppointmentStatusChanged = "medibook.appointment.status"
)

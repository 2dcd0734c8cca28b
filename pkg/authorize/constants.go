package authorize

import "slices"

type Action string
type Resource string
type Role string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionList   Action = "list"
	ActionUpdate Action = "update"
	ActionExport Action = "export"

	WildcardAction Action = "*"
)

var KnownActions = []Action{ActionCreate, ActionRead, ActionList, ActionUpdate, ActionExport}

const (
	ResourceSession       Resource = "session"
	ResourceSpecialty     Resource = "specialty"
	ResourceDoctorProfile Resource = "doctor_profile"
	ResourceBooking       Resource = "booking"
	ResourceAppointment   Resource = "appointment"
	ResourcePrescription  Resource = "prescription"

	WildcardResource Resource = "*"
)

var KnownResources = []Resource{
	ResourceSession, ResourceSpecialty, ResourceDoctorProfile,
	ResourceBooking, ResourceAppointment, ResourcePrescription,
}

// Roles are the policy subjects. A session's role claim maps onto one of
// these with RoleFor.
const (
	RolePatient Role = "role:patient"
	RoleDoctor  Role = "role:doctor"
)

var KnownRoles = []Role{RolePatient, RoleDoctor}

// RoleFor maps a session role ("patient", "doctor") to its policy subject.
func RoleFor(sessionRole string) Role {
	return Role("role:" + sessionRole)
}

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// PermissionPolicy is one p row: p, role, resource, action, eft.
type PermissionPolicy struct {
	Subject Role
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}

func knownRole(r Role) bool { return slices.Contains(KnownRoles, r) }

func knownResource(r Resource) bool {
	return r == WildcardResource || slices.Contains(KnownResources, r)
}

func knownAction(a Action) bool {
	return a == WildcardAction || slices.Contains(KnownActions, a)
}

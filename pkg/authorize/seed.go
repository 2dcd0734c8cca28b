package authorize

import (
	"context"
	"log/slog"
)

// DefaultPolicies is the baseline permission set for patients and doctors.
// Ownership (a doctor only touching their own appointments) is checked in
// the services, not here.
func DefaultPolicies() []PermissionPolicy {
	return []PermissionPolicy{
		{RolePatient, ResourceSession, WildcardAction, EffectAllow},
		{RolePatient, ResourceSpecialty, ActionList, EffectAllow},
		{RolePatient, ResourceDoctorProfile, ActionRead, EffectAllow},
		{RolePatient, ResourceDoctorProfile, ActionList, EffectAllow},
		{RolePatient, ResourceBooking, ActionCreate, EffectAllow},
		{RolePatient, ResourceAppointment, ActionList, EffectAllow},
		{RolePatient, ResourcePrescription, ActionList, EffectAllow},

		{RoleDoctor, ResourceSession, WildcardAction, EffectAllow},
		{RoleDoctor, ResourceSpecialty, ActionList, EffectAllow},
		{RoleDoctor, ResourceDoctorProfile, ActionRead, EffectAllow},
		{RoleDoctor, ResourceDoctorProfile, ActionUpdate, EffectAllow},
		{RoleDoctor, ResourceAppointment, ActionList, EffectAllow},
		{RoleDoctor, ResourceAppointment, ActionUpdate, EffectAllow},
		{RoleDoctor, ResourceAppointment, ActionExport, EffectAllow},
		{RoleDoctor, ResourcePrescription, ActionCreate, EffectAllow},
		{RoleDoctor, ResourcePrescription, ActionList, EffectAllow},
		{RoleDoctor, ResourceBooking, ActionCreate, EffectDeny},
	}
}

// SeedDefaultPolicies adds DefaultPolicies. Existing rows are left alone.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization, logger *slog.Logger) error {
	policies := DefaultPolicies()
	added := 0
	for _, p := range policies {
		ok, err := auth.AddPermission(ctx, p)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if ok {
			added++
		}
	}
	logger.Info("seeded default RBAC policies", "count", len(policies), "added", added)
	return nil
}

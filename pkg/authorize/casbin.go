// Package authorize is the role-based access layer over casbin. Subjects
// are roles; request handlers ask whether a role may perform an action on a
// resource.
package authorize

import (
	"context"
	"errors"
	"fmt"

	casbin "github.com/casbin/casbin/v2"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidArgs = errors.New("invalid authorization arguments")
)

// IAuthorization is what middleware and commands depend on.
type IAuthorization interface {
	Enforce(ctx context.Context, role Role, object Resource, action Action) (bool, error)
	MustEnforce(ctx context.Context, role Role, object Resource, action Action) error

	AddPermission(ctx context.Context, p PermissionPolicy) (bool, error)
	RemovePermission(ctx context.Context, p PermissionPolicy) (bool, error)
}

type Authorization struct {
	enforcer *casbin.DistributedEnforcer
}

// NewAuthorization wraps an enforcer whose policy is already loaded.
func NewAuthorization(e *casbin.DistributedEnforcer) (*Authorization, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: enforcer is nil", ErrInvalidArgs)
	}
	return &Authorization{enforcer: e}, nil
}

func (a *Authorization) Enforce(_ context.Context, role Role, object Resource, action Action) (bool, error) {
	if role == "" {
		return false, fmt.Errorf("%w: role is empty", ErrInvalidArgs)
	}
	if object == "" || !knownResource(object) {
		return false, fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, object)
	}
	if action == "" || !knownAction(action) {
		return false, fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, action)
	}
	return a.enforcer.Enforce(string(role), string(object), string(action))
}

func (a *Authorization) MustEnforce(ctx context.Context, role Role, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, role, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (a *Authorization) AddPermission(_ context.Context, p PermissionPolicy) (bool, error) {
	if err := validatePolicy(p); err != nil {
		return false, err
	}
	return a.enforcer.AddPolicy(string(p.Subject), string(p.Object), string(p.Action), string(p.Effect))
}

func (a *Authorization) RemovePermission(_ context.Context, p PermissionPolicy) (bool, error) {
	if err := validatePolicy(p); err != nil {
		return false, err
	}
	return a.enforcer.RemovePolicy(string(p.Subject), string(p.Object), string(p.Action), string(p.Effect))
}

func validatePolicy(p PermissionPolicy) error {
	switch {
	case !knownRole(p.Subject):
		return fmt.Errorf("%w: unknown role: %q", ErrInvalidArgs, p.Subject)
	case !knownResource(p.Object):
		return fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, p.Object)
	case !knownAction(p.Action):
		return fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, p.Action)
	case p.Effect != EffectAllow && p.Effect != EffectDeny:
		return fmt.Errorf("%w: invalid effect: %q", ErrInvalidArgs, p.Effect)
	}
	return nil
}

package service

import (
	"sync"

	"concord/internal/registry/members"
	"concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
)

// Role names one of the three governed roles.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleCouncil    Role = "council"
	RoleCommon     Role = "common"
)

// RoleRegistry tracks membership for a role administered exclusively by
// superadmins. There is no self-service: every mutation is gated on the
// calling identity holding the superadmin role, so membership changes stay
// centrally attributable.
type RoleRegistry struct {
	mu     sync.RWMutex
	role   Role
	roster *members.Roster
	admins SuperAdminChecker
}

// newRoleRegistry starts empty; members arrive only through superadmin calls.
func newRoleRegistry(role Role, admins SuperAdminChecker) *RoleRegistry {
	return &RoleRegistry{
		role:   role,
		roster: members.NewRoster(),
		admins: admins,
	}
}

// Is delegates to the membership set; null identities fail with
// CodeInvalidIdentity rather than reading as false.
func (r *RoleRegistry) Is(identity domain.Identity) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roster.Has(identity)
}

// Count returns the number of current members.
func (r *RoleRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roster.Count()
}

// Members enumerates the current members. Order carries no meaning.
func (r *RoleRegistry) Members() []domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roster.Members()
}

// Add grants the role to identity on behalf of caller.
func (r *RoleRegistry) Add(caller, identity domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.authorize(caller); err != nil {
		return err
	}
	return r.roster.Add(identity)
}

// Remove revokes the role from identity on behalf of caller.
func (r *RoleRegistry) Remove(caller, identity domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.authorize(caller); err != nil {
		return err
	}
	return r.roster.Remove(identity)
}

func (r *RoleRegistry) authorize(caller domain.Identity) error {
	ok, err := r.admins.IsSuperAdmin(caller)
	if err != nil || !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not a superadmin")
	}
	return nil
}

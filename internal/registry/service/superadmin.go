package service

import (
	"sync"

	"concord/internal/registry/members"
	"concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
)

// SuperAdminChecker is the capability the council and common registries depend
// on for their authorization gate. Composition, not inheritance: they hold a
// reference to whatever implements the check.
type SuperAdminChecker interface {
	IsSuperAdmin(identity domain.Identity) (bool, error)
}

// SuperAdminRegistry tracks the identities allowed to administer every role.
// It is seeded at construction with the bootstrap caller and the member count
// never drops to zero afterwards: the removal that would cause it fails with
// CodeLastAdminGuard.
type SuperAdminRegistry struct {
	mu     sync.RWMutex
	roster *members.Roster
}

// newSuperAdminRegistry seeds the registry with the bootstrap identity. This
// is the one add that bypasses the caller gate, since no superadmin exists yet.
func newSuperAdminRegistry(bootstrap domain.Identity) (*SuperAdminRegistry, error) {
	r := &SuperAdminRegistry{roster: members.NewRoster()}
	if err := r.roster.Add(bootstrap); err != nil {
		return nil, err
	}
	return r, nil
}

// IsSuperAdmin delegates to the membership set; null identities fail with
// CodeInvalidIdentity rather than reading as false.
func (r *SuperAdminRegistry) IsSuperAdmin(identity domain.Identity) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roster.Has(identity)
}

// Count returns the number of current superadmins.
func (r *SuperAdminRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roster.Count()
}

// Members enumerates the current superadmins. Order carries no meaning.
func (r *SuperAdminRegistry) Members() []domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roster.Members()
}

// Add grants the superadmin role. Only an existing superadmin may call it.
func (r *SuperAdminRegistry) Add(caller, identity domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.authorize(caller); err != nil {
		return err
	}
	return r.roster.Add(identity)
}

// Renounce removes the caller from the superadmin set. Self-removal only; the
// last remaining superadmin cannot renounce.
func (r *SuperAdminRegistry) Renounce(caller domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.roster.Count() <= 1 {
		return dErrors.New(dErrors.CodeLastAdminGuard, "cannot remove the last superadmin")
	}
	return r.roster.Remove(caller)
}

// authorize holds the write lock of its caller; a null or unknown caller is an
// authorization failure, not an identity error.
func (r *SuperAdminRegistry) authorize(caller domain.Identity) error {
	ok, err := r.roster.Has(caller)
	if err != nil || !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not a superadmin")
	}
	return nil
}

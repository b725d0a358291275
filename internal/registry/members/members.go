// Package members provides the membership primitives shared by every role
// registry: the boolean membership set and the roster pairing it with an
// ordered member list.
package members

import (
	"concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
)

// Set is the boolean membership map keyed by identity. It is the only layer
// that enforces the null-identity guard; everything above inherits it through
// composition.
type Set struct {
	members map[domain.Identity]bool
}

// NewSet constructs an empty membership set.
func NewSet() *Set {
	return &Set{members: make(map[domain.Identity]bool)}
}

// Has reports current membership. A lookup on the null identity always fails
// rather than returning false.
func (s *Set) Has(identity domain.Identity) (bool, error) {
	if identity.IsZero() {
		return false, dErrors.New(dErrors.CodeInvalidIdentity, "null identity is not a queryable subject")
	}
	return s.members[identity], nil
}

// Add marks the identity as a member.
func (s *Set) Add(identity domain.Identity) error {
	has, err := s.Has(identity)
	if err != nil {
		return err
	}
	if has {
		return dErrors.New(dErrors.CodeAlreadyMember, "identity already holds this role")
	}
	s.members[identity] = true
	return nil
}

// Remove clears membership for the identity.
func (s *Set) Remove(identity domain.Identity) error {
	has, err := s.Has(identity)
	if err != nil {
		return err
	}
	if !has {
		return dErrors.New(dErrors.CodeNotMember, "identity does not hold this role")
	}
	delete(s.members, identity)
	return nil
}

// Roster pairs a membership set with the ordered, duplicate-free member list.
// Both fields are private and only ever mutated together, within one call, so
// the set and the list cannot desynchronize. The set is the authoritative O(1)
// membership test; the list exists for enumeration and count only.
//
// Roster is not safe for concurrent use; each role registry serializes access
// behind its own lock.
type Roster struct {
	set   *Set
	order []domain.Identity
}

// NewRoster constructs an empty roster.
func NewRoster() *Roster {
	return &Roster{set: NewSet()}
}

// Has reports membership, delegating the null guard to the set.
func (r *Roster) Has(identity domain.Identity) (bool, error) {
	return r.set.Has(identity)
}

// Count returns the number of current members.
func (r *Roster) Count() int {
	return len(r.order)
}

// Members returns a copy of the member list. Enumeration order changes across
// removals and carries no meaning; callers must use Has for authorization.
func (r *Roster) Members() []domain.Identity {
	return append([]domain.Identity{}, r.order...)
}

// Add marks the identity as a member and appends it to the list.
func (r *Roster) Add(identity domain.Identity) error {
	if err := r.set.Add(identity); err != nil {
		return err
	}
	r.order = append(r.order, identity)
	return nil
}

// Remove clears membership and drops the identity from the list via an
// unordered swap-with-last removal: O(n) scan, O(1) shrink. The scan is safe
// because the set check above guarantees the identity is present.
func (r *Roster) Remove(identity domain.Identity) error {
	if err := r.set.Remove(identity); err != nil {
		return err
	}
	for i, member := range r.order {
		if member == identity {
			last := len(r.order) - 1
			r.order[i] = r.order[last]
			r.order = r.order[:last]
			break
		}
	}
	return nil
}

// Package domain holds the typed identifiers shared across the service.
//
// Identity is the single principal reference all role membership is keyed on.
// It is a distinct type over uuid.UUID so identities cannot be confused with
// other UUID-valued fields at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "concord/pkg/domain-errors"
)

// Identity is an opaque, comparable principal identifier. The nil UUID is the
// reserved null identity and is never a valid role holder.
type Identity uuid.UUID

// NilIdentity is the reserved null identity.
var NilIdentity = Identity(uuid.Nil)

// NewIdentity returns a fresh random identity.
func NewIdentity() Identity {
	return Identity(uuid.New())
}

// ParseIdentity parses a string into an Identity.
// Rejects empty strings, malformed UUIDs, and the nil UUID.
func ParseIdentity(s string) (Identity, error) {
	if s == "" {
		return NilIdentity, dErrors.New(dErrors.CodeInvalidIdentity, "identity is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return NilIdentity, dErrors.Wrap(err, dErrors.CodeInvalidIdentity, "identity must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return NilIdentity, dErrors.New(dErrors.CodeInvalidIdentity, "identity must not be the nil UUID")
	}
	return Identity(parsed), nil
}

// IsZero reports whether the identity is the reserved null identity.
func (i Identity) IsZero() bool {
	return uuid.UUID(i) == uuid.Nil
}

func (i Identity) String() string {
	return uuid.UUID(i).String()
}

package audit

import (
	"context"
	"time"

	"concord/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance. These
	// require tamper-proof storage and long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring and
	// forensics. Privileged-role changes belong here.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the registry on every successful mutation. Exactly one
// event per committed operation, none on a failed call. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Action    string
	// Identity is the member affected by the mutation.
	Identity domain.Identity
	// ActorID is the caller the mutation is attributed to. For the bootstrap
	// seed this equals Identity.
	ActorID domain.Identity
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
}

// AuditEvent names one mutation of the role registry.
type AuditEvent string

const (
	EventSuperAdminAdded   AuditEvent = "superadmin_added"
	EventSuperAdminRemoved AuditEvent = "superadmin_removed"
	EventCouncilAdded      AuditEvent = "council_added"
	EventCouncilRemoved    AuditEvent = "council_removed"
	EventCommonAdded       AuditEvent = "common_added"
	EventCommonRemoved     AuditEvent = "common_removed"
)

// eventCategories maps each audit event to its category.
// SuperAdmin changes alter who controls the registry itself, so they route to
// security monitoring; council/common membership changes are compliance records.
var eventCategories = map[AuditEvent]EventCategory{
	EventSuperAdminAdded:   CategorySecurity,
	EventSuperAdminRemoved: CategorySecurity,
	EventCouncilAdded:      CategoryCompliance,
	EventCouncilRemoved:    CategoryCompliance,
	EventCommonAdded:       CategoryCompliance,
	EventCommonRemoved:     CategoryCompliance,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store is an append-only audit sink. Implementations must preserve the order
// in which events are appended; the trail is ordered by committed operation.
type Store interface {
	Append(ctx context.Context, event Event) error
}

package handler

import (
	"time"

	"concord/pkg/domain"
	audit "concord/pkg/platform/audit"
)

// RoleFlagsResponse reports which roles an identity currently holds.
type RoleFlagsResponse struct {
	Identity   string `json:"identity"`
	SuperAdmin bool   `json:"superadmin"`
	Council    bool   `json:"council"`
	Common     bool   `json:"common"`
}

// MembersResponse enumerates a role's current members. Order carries no
// meaning; the count and the boolean predicates are the contract.
type MembersResponse struct {
	Role    string   `json:"role"`
	Count   int      `json:"count"`
	Members []string `json:"members"`
}

// CountResponse reports a role's member count.
type CountResponse struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// AuditEventResponse is one entry of the audit trail.
type AuditEventResponse struct {
	Action    string    `json:"action"`
	Identity  string    `json:"identity"`
	Actor     string    `json:"actor"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func membersResponse(role string, members []domain.Identity) MembersResponse {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.String())
	}
	return MembersResponse{Role: role, Count: len(members), Members: out}
}

func auditResponse(events []audit.Event) []AuditEventResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, AuditEventResponse{
			Action:    e.Action,
			Identity:  e.Identity.String(),
			Actor:     e.ActorID.String(),
			RequestID: e.RequestID,
			Timestamp: e.Timestamp,
		})
	}
	return out
}

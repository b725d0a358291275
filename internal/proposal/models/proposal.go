// Package models declares the proposal/ballot data shapes a governance
// workflow built on the role registry would use. Nothing here is wired to the
// registry: which roles gate which proposal stages, and whether votes carry
// role-dependent weight, is a collaborator contract to be designed separately.
// A complete workflow would call the registry's IsSuperAdmin/IsCouncil/IsCommon
// predicates before permitting a transition.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ProposalID identifies one proposal.
type ProposalID uuid.UUID

func (p ProposalID) String() string {
	return uuid.UUID(p).String()
}

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus string

const (
	ProposalStatusDraft     ProposalStatus = "draft"
	ProposalStatusSubmitted ProposalStatus = "submitted"
	ProposalStatusVoting    ProposalStatus = "voting"
	ProposalStatusAccepted  ProposalStatus = "accepted"
	ProposalStatusRejected  ProposalStatus = "rejected"
	ProposalStatusWithdrawn ProposalStatus = "withdrawn"
)

// Valid reports whether the status is one of the declared states.
func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalStatusDraft, ProposalStatusSubmitted, ProposalStatusVoting,
		ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusWithdrawn:
		return true
	}
	return false
}

// Tally is the running vote count for a proposal.
type Tally struct {
	For     uint64 `json:"for"`
	Against uint64 `json:"against"`
	Abstain uint64 `json:"abstain"`
}

// Proposal is the ballot record. Tallying and lifecycle transitions live in
// the (separate) voting workflow, not here.
type Proposal struct {
	ID        ProposalID     `json:"id"`
	Status    ProposalStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	VotesAt   time.Time      `json:"voting_opens_at"`
	ClosesAt  time.Time      `json:"voting_closes_at"`
	Tally     Tally          `json:"tally"`
}

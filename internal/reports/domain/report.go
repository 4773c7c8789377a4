// Package domain holds the lost-pet report entity and its lifecycle.
package domain

import (
	"time"

	"katze_backend/internal/authz"
	"katze_backend/internal/lifecycle"

	"github.com/google/uuid"
)

// State is the lifecycle state of a report.
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"
	StateFound    State = "found"
)

// Lifecycle is the report transition table. Only the submitter may mark a report found.
var Lifecycle = lifecycle.New("report",
	[]State{StatePending, StateApproved, StateRejected, StateFound},
	lifecycle.Edge[State]{From: StatePending, To: StateApproved, Guard: lifecycle.Staff},
	lifecycle.Edge[State]{From: StatePending, To: StateRejected, Guard: lifecycle.Staff},
	lifecycle.Edge[State]{From: StateApproved, To: StateFound, Guard: lifecycle.Owner},
)

// InitialState returns approved for submitters allowed to publish directly, pending otherwise.
func InitialState(can authz.Capability, actor authz.Principal) State {
	if can.Can(authz.ActionPublishDirectly, authz.Subject{Actor: actor}) {
		return StateApproved
	}
	return StatePending
}

// Report is a lost-pet alert.
type Report struct {
	ID            uuid.UUID
	PetName       *string
	Description   string
	PhotoURL      string
	Zone          string
	Contact       string
	SightedAt     time.Time
	State         State
	SubmittedBy   uuid.UUID
	SubmitterRole string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

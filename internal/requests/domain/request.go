// Package domain holds the adoption request entity, its lifecycle and the
// pre-filter that picks its initial state.
package domain

import (
	"time"

	"katze_backend/internal/lifecycle"

	"github.com/google/uuid"
)

// State is the lifecycle state of an adoption request.
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"
)

// Lifecycle is the request transition table. approved -> rejected covers a
// failed interview after approval; rejected never returns to approved.
var Lifecycle = lifecycle.New("request",
	[]State{StatePending, StateApproved, StateRejected},
	lifecycle.Edge[State]{From: StatePending, To: StateApproved, Guard: lifecycle.Staff},
	lifecycle.Edge[State]{From: StatePending, To: StateRejected, Guard: lifecycle.Staff},
	lifecycle.Edge[State]{From: StateApproved, To: StateRejected, Guard: lifecycle.Staff},
)

// Housing is the applicant's home type.
type Housing string

const (
	HousingHouse     Housing = "house"
	HousingApartment Housing = "apartment"
)

// Valid reports whether h is a known housing type.
func (h Housing) Valid() bool {
	return h == HousingHouse || h == HousingApartment
}

// Request is an adoption application for one listing.
type Request struct {
	ID               uuid.UUID
	ListingID        uuid.UUID
	ApplicantName    string
	Phone            string
	Email            string
	Motive           string
	Housing          Housing
	HasSafetyNetting bool
	HasYard          bool
	HasOtherPets     bool
	HasChildren      bool
	ChildCount       int
	State            State
	SubmittedBy      *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

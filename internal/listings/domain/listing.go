// Package domain holds the cat listing entity and its lifecycle.
package domain

import (
	"time"

	"katze_backend/internal/authz"
	"katze_backend/internal/lifecycle"

	"github.com/google/uuid"
)

// State is the lifecycle state of a listing.
type State string

const (
	StatePending       State = "pending"
	StateListed        State = "listed"
	StateTemporaryHome State = "temporary_home"
	StateAdopted       State = "adopted"
	StateRejected      State = "rejected"
)

// Lifecycle is the listing transition table. adopted and rejected are terminal.
var Lifecycle = lifecycle.New("listing",
	[]State{StatePending, StateListed, StateTemporaryHome, StateAdopted, StateRejected},
	lifecycle.Edge[State]{From: StatePending, To: StateListed, Guard: lifecycle.Staff},
	lifecycle.Edge[State]{From: StatePending, To: StateRejected, Guard: lifecycle.Staff},
	lifecycle.Edge[State]{From: StateListed, To: StateTemporaryHome, Guard: lifecycle.Staff},
	lifecycle.Edge[State]{From: StateTemporaryHome, To: StateListed, Guard: lifecycle.Staff},
	lifecycle.Edge[State]{From: StateListed, To: StateAdopted, Guard: lifecycle.Staff},
	lifecycle.Edge[State]{From: StateTemporaryHome, To: StateAdopted, Guard: lifecycle.Staff},
)

// PublicStates are visible without moderation rights.
var PublicStates = []State{StateListed, StateTemporaryHome, StateAdopted}

// Public reports whether the state is visible to everyone.
func (s State) Public() bool {
	return s == StateListed || s == StateTemporaryHome || s == StateAdopted
}

// Adoptable reports whether new adoption requests may target the listing.
func (s State) Adoptable() bool {
	return s == StateListed || s == StateTemporaryHome
}

// InitialState returns listed for submitters allowed to publish directly, pending otherwise.
func InitialState(can authz.Capability, actor authz.Principal) State {
	if can.Can(authz.ActionPublishDirectly, authz.Subject{Actor: actor}) {
		return StateListed
	}
	return StatePending
}

// Listing is an adoptable cat profile.
type Listing struct {
	ID            uuid.UUID
	Name          string
	Description   string
	AgeLabel      string
	Temperament   string
	HealthStatus  string
	Photos        []string
	Location      *string
	State         State
	SubmittedBy   uuid.UUID
	SubmitterRole string
	RequestCount  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FirstPhoto returns the cover photo, or an empty string.
func (l Listing) FirstPhoto() string {
	if len(l.Photos) == 0 {
		return ""
	}
	return l.Photos[0]
}

// Patch holds staff edits to a listing's descriptive fields. Nil fields are
// left unchanged; state and counters are not editable.
type Patch struct {
	Name         *string
	Description  *string
	AgeLabel     *string
	Temperament  *string
	HealthStatus *string
	Location     *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.AgeLabel == nil &&
		p.Temperament == nil && p.HealthStatus == nil && p.Location == nil
}

// Apply copies the set fields onto l.
func (p Patch) Apply(l *Listing) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.AgeLabel != nil {
		l.AgeLabel = *p.AgeLabel
	}
	if p.Temperament != nil {
		l.Temperament = *p.Temperament
	}
	if p.HealthStatus != nil {
		l.HealthStatus = *p.HealthStatus
	}
	if p.Location != nil {
		loc := *p.Location
		l.Location = &loc
	}
}

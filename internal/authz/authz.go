// Package authz centralises role and ownership decisions.
package authz

import (
	"katze_backend/platform/httpkit"

	"github.com/google/uuid"
)

// Role is the principal's role as issued by the identity provider.
type Role string

const (
	RoleUser      Role = httpkit.RoleUser
	RoleModerator Role = httpkit.RoleModerator
	RoleAdmin     Role = httpkit.RoleAdmin
)

// Principal is the acting caller. A zero ID means anonymous.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

// Anonymous reports whether the principal carries no identity.
func (p Principal) Anonymous() bool { return p.ID == uuid.Nil }

// FromIdentity converts an HTTP identity into a Principal.
func FromIdentity(id httpkit.Identity) Principal {
	if id == nil || !id.IsAuthenticated() {
		return Principal{}
	}
	return Principal{ID: id.UserID(), Role: Role(id.Role())}
}

// Subject is what an action is evaluated against: the actor and, for owned
// entities, the original submitter.
type Subject struct {
	Actor Principal
	Owner uuid.UUID
}

// Action names a permission.
type Action string

const (
	// ActionModerate covers staff queries and staff transitions.
	ActionModerate Action = "moderate"
	// ActionPublishDirectly lets a submission skip the pending state.
	ActionPublishDirectly Action = "publish_directly"
	// ActionActAsOwner covers transitions reserved to the original submitter.
	ActionActAsOwner Action = "act_as_owner"
	// ActionSubmit covers creating listings and reports.
	ActionSubmit Action = "submit"
	// ActionManageSettings covers editing site settings.
	ActionManageSettings Action = "manage_settings"
)

// Capability answers whether an action is allowed for a subject.
type Capability interface {
	Can(action Action, subject Subject) bool
}

// Policy is the role table used in production.
type Policy struct{}

// NewPolicy returns the default policy.
func NewPolicy() Policy { return Policy{} }

// Can implements Capability.
func (Policy) Can(action Action, subject Subject) bool {
	actor := subject.Actor
	switch action {
	case ActionModerate:
		return !actor.Anonymous() && (actor.Role == RoleModerator || actor.Role == RoleAdmin)
	case ActionPublishDirectly, ActionManageSettings:
		return !actor.Anonymous() && actor.Role == RoleAdmin
	case ActionActAsOwner:
		return !actor.Anonymous() && subject.Owner != uuid.Nil && actor.ID == subject.Owner
	case ActionSubmit:
		return !actor.Anonymous()
	default:
		return false
	}
}

var _ Capability = Policy{}

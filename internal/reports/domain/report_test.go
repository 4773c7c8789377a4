package domain

import (
	"testing"

	"katze_backend/internal/authz"
	"katze_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestFoundOnlyByOwnerFromApproved(t *testing.T) {
	owner := authz.Principal{ID: uuid.New(), Role: authz.RoleUser}
	other := authz.Principal{ID: uuid.New(), Role: authz.RoleUser}
	moderator := authz.Principal{ID: uuid.New(), Role: authz.RoleModerator}
	can := authz.NewPolicy()

	tests := []struct {
		name  string
		actor authz.Principal
		from  State
		ok    bool
	}{
		{"owner from approved", owner, StateApproved, true},
		{"owner from pending", owner, StatePending, false},
		{"owner from rejected", owner, StateRejected, false},
		{"owner from found", owner, StateFound, false},
		{"other user from approved", other, StateApproved, false},
		{"moderator from approved", moderator, StateApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Lifecycle.Check(can, authz.Subject{Actor: tt.actor, Owner: owner.ID}, tt.from, StateFound)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !apperr.Is(err, apperr.KindTransition) {
				t.Fatalf("err = %v, want transition", err)
			}
		})
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []State{StateRejected, StateFound} {
		if !Lifecycle.IsTerminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	if Lifecycle.IsTerminal(StateApproved) {
		t.Error("approved should not be terminal")
	}
}

func TestFoundNeverReturnsToApproved(t *testing.T) {
	moderator := authz.Principal{ID: uuid.New(), Role: authz.RoleAdmin}
	err := Lifecycle.Check(authz.NewPolicy(), authz.Subject{Actor: moderator}, StateFound, StateApproved)
	if !apperr.Is(err, apperr.KindTransition) {
		t.Fatalf("err = %v, want transition", err)
	}
}

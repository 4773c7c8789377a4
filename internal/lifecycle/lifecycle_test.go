package lifecycle

import (
	"testing"

	"katze_backend/internal/authz"
	"katze_backend/platform/apperr"

	"github.com/google/uuid"
)

type state string

const (
	open   state = "open"
	done   state = "done"
	closed state = "closed"
)

func newMachine() *Machine[state] {
	return New("ticket", []state{open, done, closed},
		Edge[state]{From: open, To: done, Guard: Owner},
		Edge[state]{From: open, To: closed, Guard: Staff},
	)
}

func TestCheckMissingEdgeIsTransitionError(t *testing.T) {
	m := newMachine()
	admin := authz.Subject{Actor: authz.Principal{ID: uuid.New(), Role: authz.RoleAdmin}}

	err := m.Check(authz.NewPolicy(), admin, closed, open)
	if !apperr.Is(err, apperr.KindTransition) {
		t.Fatalf("err = %v, want transition error", err)
	}
}

func TestCheckSelfTransitionForbidden(t *testing.T) {
	m := newMachine()
	admin := authz.Subject{Actor: authz.Principal{ID: uuid.New(), Role: authz.RoleAdmin}}

	if err := m.Check(authz.NewPolicy(), admin, closed, closed); !apperr.Is(err, apperr.KindTransition) {
		t.Fatalf("err = %v, want transition error", err)
	}
}

func TestCheckGuardFailureIsTransitionError(t *testing.T) {
	m := newMachine()
	owner := uuid.New()
	stranger := authz.Subject{Actor: authz.Principal{ID: uuid.New(), Role: authz.RoleUser}, Owner: owner}

	if err := m.Check(authz.NewPolicy(), stranger, open, done); !apperr.Is(err, apperr.KindTransition) {
		t.Fatalf("err = %v, want transition error", err)
	}

	self := authz.Subject{Actor: authz.Principal{ID: owner, Role: authz.RoleUser}, Owner: owner}
	if err := m.Check(authz.NewPolicy(), self, open, done); err != nil {
		t.Fatalf("owner should pass: %v", err)
	}
}

func TestCheckUnknownTargetIsValidation(t *testing.T) {
	m := newMachine()
	if err := m.Check(authz.NewPolicy(), authz.Subject{}, open, state("bogus")); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestTerminalAndTargets(t *testing.T) {
	m := newMachine()
	if !m.IsTerminal(done) || !m.IsTerminal(closed) {
		t.Fatal("done and closed should be terminal")
	}
	if m.IsTerminal(open) {
		t.Fatal("open should not be terminal")
	}
	targets := m.Targets(open)
	if len(targets) != 2 || targets[0] != closed || targets[1] != done {
		t.Fatalf("targets = %v", targets)
	}
}

func TestNewPanicsOnUnknownState(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New("broken", []state{open}, Edge[state]{From: open, To: done, Guard: Staff})
}

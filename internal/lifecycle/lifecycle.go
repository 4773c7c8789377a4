// Package lifecycle provides table-driven state machines with guarded edges.
package lifecycle

import (
	"fmt"
	"sort"

	"katze_backend/internal/authz"
	"katze_backend/platform/apperr"
)

// Guard names who may traverse an edge.
type Guard int

const (
	// Staff edges require a moderator or admin.
	Staff Guard = iota + 1
	// Owner edges require the original submitter.
	Owner
)

func (g Guard) action() authz.Action {
	switch g {
	case Staff:
		return authz.ActionModerate
	case Owner:
		return authz.ActionActAsOwner
	}
	return ""
}

func (g Guard) String() string {
	switch g {
	case Staff:
		return "staff"
	case Owner:
		return "owner"
	}
	return "none"
}

// Edge is one permitted transition.
type Edge[S ~string] struct {
	From  S
	To    S
	Guard Guard
}

// Machine is an explicit transition table. Any pair not in the table is forbidden.
type Machine[S ~string] struct {
	name   string
	states map[S]struct{}
	edges  map[S]map[S]Guard
}

// New builds a machine from its states and edges.
func New[S ~string](name string, states []S, edges ...Edge[S]) *Machine[S] {
	m := &Machine[S]{
		name:   name,
		states: make(map[S]struct{}, len(states)),
		edges:  make(map[S]map[S]Guard, len(states)),
	}
	for _, s := range states {
		m.states[s] = struct{}{}
	}
	for _, e := range edges {
		if _, ok := m.states[e.From]; !ok {
			panic(fmt.Sprintf("lifecycle %s: unknown state %q", name, e.From))
		}
		if _, ok := m.states[e.To]; !ok {
			panic(fmt.Sprintf("lifecycle %s: unknown state %q", name, e.To))
		}
		if m.edges[e.From] == nil {
			m.edges[e.From] = make(map[S]Guard)
		}
		m.edges[e.From][e.To] = e.Guard
	}
	return m
}

// Name returns the entity name used in errors and logs.
func (m *Machine[S]) Name() string { return m.name }

// Valid reports whether s is a known state.
func (m *Machine[S]) Valid(s S) bool {
	_, ok := m.states[s]
	return ok
}

// Guard returns the guard of the edge from -> to and whether it exists.
func (m *Machine[S]) Guard(from, to S) (Guard, bool) {
	g, ok := m.edges[from][to]
	return g, ok
}

// IsTerminal reports whether s has no outgoing edge.
func (m *Machine[S]) IsTerminal(s S) bool {
	return len(m.edges[s]) == 0
}

// Targets lists the states reachable in one step from s, sorted.
func (m *Machine[S]) Targets(from S) []S {
	out := make([]S, 0, len(m.edges[from]))
	for to := range m.edges[from] {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Check verifies that subject may move an entity from -> to.
// It returns an apperr.KindTransition error when the edge is missing or its guard fails.
func (m *Machine[S]) Check(can authz.Capability, subject authz.Subject, from, to S) error {
	if !m.Valid(to) {
		return apperr.Validation(fmt.Sprintf("unknown %s state %q", m.name, to))
	}
	guard, ok := m.Guard(from, to)
	if !ok {
		return apperr.Transition(fmt.Sprintf("%s cannot move from %s to %s", m.name, from, to)).
			WithDetails(map[string]any{"from": from, "to": to})
	}
	if !can.Can(guard.action(), subject) {
		return apperr.Transition(fmt.Sprintf("%s transition from %s to %s requires %s", m.name, from, to, guard)).
			WithDetails(map[string]any{"from": from, "to": to, "guard": guard.String()})
	}
	return nil
}

package domain

import (
	"testing"

	"katze_backend/internal/authz"
	"katze_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestInitialState(t *testing.T) {
	tests := []struct {
		housing Housing
		kids    int
		want    State
	}{
		{HousingApartment, 0, StatePending},
		{HousingApartment, 2, StatePending},
		{HousingApartment, 3, StateRejected},
		{HousingApartment, 7, StateRejected},
		{HousingHouse, 0, StatePending},
		{HousingHouse, 3, StatePending},
		{HousingHouse, 5, StatePending},
	}

	for _, tt := range tests {
		if got := InitialState(tt.housing, tt.kids); got != tt.want {
			t.Errorf("InitialState(%s, %d) = %s, want %s", tt.housing, tt.kids, got, tt.want)
		}
	}
}

func TestApprovedCanStillBeRejected(t *testing.T) {
	staff := authz.Subject{Actor: authz.Principal{ID: uuid.New(), Role: authz.RoleModerator}}
	can := authz.NewPolicy()

	if err := Lifecycle.Check(can, staff, StateApproved, StateRejected); err != nil {
		t.Fatalf("approved -> rejected: %v", err)
	}
	if err := Lifecycle.Check(can, staff, StateRejected, StateApproved); !apperr.Is(err, apperr.KindTransition) {
		t.Fatalf("rejected -> approved: err = %v, want transition", err)
	}
	if !Lifecycle.IsTerminal(StateRejected) {
		t.Fatal("rejected should be terminal")
	}
}

func TestHousingValid(t *testing.T) {
	if !HousingHouse.Valid() || !HousingApartment.Valid() || Housing("castle").Valid() {
		t.Fatal("unexpected housing validity")
	}
}

package domain

// MaxApartmentChildren is the largest number of dependent children accepted
// for apartment applicants before automatic rejection.
const MaxApartmentChildren = 2

// InitialState applies the pre-filter: apartment applicants with more than
// MaxApartmentChildren children are rejected without staff review.
func InitialState(housing Housing, childCount int) State {
	if housing == HousingApartment && childCount > MaxApartmentChildren {
		return StateRejected
	}
	return StatePending
}

package transport

import (
	"time"

	"katze_backend/internal/requests/domain"

	"github.com/google/uuid"
)

// CreateRequestRequest is the JSON body of a new adoption request.
type CreateRequestRequest struct {
	ListingID        string `json:"listingId" validate:"required,uuid"`
	ApplicantName    string `json:"applicantName" validate:"notblank,max=120"`
	Phone            string `json:"phone" validate:"notblank,max=40"`
	Email            string `json:"email" validate:"required,email,max=254"`
	Motive           string `json:"motive" validate:"notblank,max=2000"`
	Housing          string `json:"housing" validate:"required,oneof=house apartment"`
	HasSafetyNetting bool   `json:"hasSafetyNetting"`
	HasYard          bool   `json:"hasYard"`
	HasOtherPets     bool   `json:"hasOtherPets"`
	HasChildren      bool   `json:"hasChildren"`
	ChildCount       int    `json:"childCount" validate:"min=0,max=30"`
}

// ListingSummary is the target cat shown next to a request.
type ListingSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Photo string    `json:"photo,omitempty"`
	State string    `json:"state"`
}

type RequestResponse struct {
	ID               uuid.UUID       `json:"id"`
	ListingID        uuid.UUID       `json:"listingId"`
	ApplicantName    string          `json:"applicantName"`
	Phone            string          `json:"phone"`
	Email            string          `json:"email"`
	Motive           string          `json:"motive"`
	Housing          string          `json:"housing"`
	HasSafetyNetting bool            `json:"hasSafetyNetting"`
	HasYard          bool            `json:"hasYard"`
	HasOtherPets     bool            `json:"hasOtherPets"`
	HasChildren      bool            `json:"hasChildren"`
	ChildCount       int             `json:"childCount"`
	State            string          `json:"state"`
	Listing          *ListingSummary `json:"listing,omitempty"`
	CreatedAt        string          `json:"createdAt"`
	UpdatedAt        string          `json:"updatedAt"`
}

type RequestListResponse struct {
	Items []RequestResponse `json:"items"`
	Total int               `json:"total"`
}

func ToRequestResponse(r domain.Request) RequestResponse {
	return RequestResponse{
		ID:               r.ID,
		ListingID:        r.ListingID,
		ApplicantName:    r.ApplicantName,
		Phone:            r.Phone,
		Email:            r.Email,
		Motive:           r.Motive,
		Housing:          string(r.Housing),
		HasSafetyNetting: r.HasSafetyNetting,
		HasYard:          r.HasYard,
		HasOtherPets:     r.HasOtherPets,
		HasChildren:      r.HasChildren,
		ChildCount:       r.ChildCount,
		State:            string(r.State),
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt.Format(time.RFC3339),
	}
}

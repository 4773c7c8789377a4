package transport

import (
	"time"

	"katze_backend/internal/listings/domain"

	"github.com/google/uuid"
)

// CreateListingRequest is the multipart form of a new listing. The photo travels as a file part.
type CreateListingRequest struct {
	Name         string `form:"name" json:"name" validate:"notblank,max=80"`
	Description  string `form:"description" json:"description" validate:"notblank,max=2000"`
	AgeLabel     string `form:"ageLabel" json:"ageLabel" validate:"notblank,max=60"`
	Temperament  string `form:"temperament" json:"temperament" validate:"notblank,max=300"`
	HealthStatus string `form:"healthStatus" json:"healthStatus" validate:"notblank,max=300"`
	Location     string `form:"location" json:"location" validate:"max=200"`
}

// UpdateListingRequest edits descriptive fields. Omitted fields stay as they are.
type UpdateListingRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,notblank,max=80"`
	Description  *string `json:"description,omitempty" validate:"omitempty,notblank,max=2000"`
	AgeLabel     *string `json:"ageLabel,omitempty" validate:"omitempty,notblank,max=60"`
	Temperament  *string `json:"temperament,omitempty" validate:"omitempty,notblank,max=300"`
	HealthStatus *string `json:"healthStatus,omitempty" validate:"omitempty,notblank,max=300"`
	Location     *string `json:"location,omitempty" validate:"omitempty,max=200"`
}

type SubmitterSummary struct {
	ID   uuid.UUID `json:"id"`
	Role string    `json:"role"`
}

type ListingResponse struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	AgeLabel     string           `json:"ageLabel"`
	Temperament  string           `json:"temperament"`
	HealthStatus string           `json:"healthStatus"`
	Photos       []string         `json:"photos"`
	Location     *string          `json:"location,omitempty"`
	State        string           `json:"state"`
	RequestCount int              `json:"requestCount"`
	Submitter    SubmitterSummary `json:"submitter"`
	CreatedAt    string           `json:"createdAt"`
	UpdatedAt    string           `json:"updatedAt"`
}

type ListingListResponse struct {
	Items []ListingResponse `json:"items"`
	Total int               `json:"total"`
}

// ToListingResponse maps a domain listing to its JSON shape.
func ToListingResponse(l domain.Listing) ListingResponse {
	return ListingResponse{
		ID:           l.ID,
		Name:         l.Name,
		Description:  l.Description,
		AgeLabel:     l.AgeLabel,
		Temperament:  l.Temperament,
		HealthStatus: l.HealthStatus,
		Photos:       l.Photos,
		Location:     l.Location,
		State:        string(l.State),
		RequestCount: l.RequestCount,
		Submitter:    SubmitterSummary{ID: l.SubmittedBy, Role: l.SubmitterRole},
		CreatedAt:    l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    l.UpdatedAt.Format(time.RFC3339),
	}
}

// ToListingListResponse maps a slice of listings.
func ToListingListResponse(items []domain.Listing) ListingListResponse {
	out := make([]ListingResponse, 0, len(items))
	for _, l := range items {
		out = append(out, ToListingResponse(l))
	}
	return ListingListResponse{Items: out, Total: len(out)}
}

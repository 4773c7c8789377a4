package transport

import (
	"time"

	"katze_backend/internal/reports/domain"

	"github.com/google/uuid"
)

// CreateReportRequest is the multipart form of a new lost-pet report.
// SightedAt accepts a date (2006-01-02) or an RFC 3339 timestamp; empty means now.
type CreateReportRequest struct {
	PetName     string `form:"petName" json:"petName" validate:"max=80"`
	Description string `form:"description" json:"description" validate:"notblank,max=2000"`
	Zone        string `form:"zone" json:"zone" validate:"notblank,max=200"`
	Contact     string `form:"contact" json:"contact" validate:"notblank,max=200"`
	SightedAt   string `form:"sightedAt" json:"sightedAt" validate:"max=40"`
}

type SubmitterSummary struct {
	ID   uuid.UUID `json:"id"`
	Role string    `json:"role"`
}

type ReportResponse struct {
	ID          uuid.UUID        `json:"id"`
	PetName     *string          `json:"petName,omitempty"`
	Description string           `json:"description"`
	PhotoURL    string           `json:"photoUrl"`
	Zone        string           `json:"zone"`
	Contact     string           `json:"contact"`
	SightedAt   string           `json:"sightedAt"`
	State       string           `json:"state"`
	Submitter   SubmitterSummary `json:"submitter"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
}

type ReportListResponse struct {
	Items []ReportResponse `json:"items"`
	Total int              `json:"total"`
}

func ToReportResponse(r domain.Report) ReportResponse {
	return ReportResponse{
		ID:          r.ID,
		PetName:     r.PetName,
		Description: r.Description,
		PhotoURL:    r.PhotoURL,
		Zone:        r.Zone,
		Contact:     r.Contact,
		SightedAt:   r.SightedAt.Format(time.RFC3339),
		State:       string(r.State),
		Submitter:   SubmitterSummary{ID: r.SubmittedBy, Role: r.SubmitterRole},
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
}

func ToReportListResponse(items []domain.Report) ReportListResponse {
	out := make([]ReportResponse, 0, len(items))
	for _, r := range items {
		out = append(out, ToReportResponse(r))
	}
	return ReportListResponse{Items: out, Total: len(out)}
}

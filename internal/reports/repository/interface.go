package repository

import (
	"context"

	"katze_backend/internal/reports/domain"

	"github.com/google/uuid"
)

// ListParams filters report queries. Empty States means every state.
type ListParams struct {
	States      []domain.State
	SubmittedBy *uuid.UUID
}

// Repository persists lost-pet reports.
type Repository interface {
	Create(ctx context.Context, report domain.Report) (domain.Report, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Report, error)
	List(ctx context.Context, params ListParams) ([]domain.Report, error)
	// UpdateState moves the report only if it is still in from.
	UpdateState(ctx context.Context, id uuid.UUID, from, to domain.State) (domain.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

package repository

import (
	"context"

	"katze_backend/internal/listings/domain"

	"github.com/google/uuid"
)

// ListParams filters listing queries. Empty States means every state.
type ListParams struct {
	States      []domain.State
	SubmittedBy *uuid.UUID
}

// Repository persists listings.
type Repository interface {
	Create(ctx context.Context, listing domain.Listing) (domain.Listing, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error)
	List(ctx context.Context, params ListParams) ([]domain.Listing, error)
	// UpdateState moves the listing only if it is still in from.
	UpdateState(ctx context.Context, id uuid.UUID, from, to domain.State) (domain.Listing, error)
	// Update applies the non-nil fields of patch. The state is never touched.
	Update(ctx context.Context, id uuid.UUID, patch domain.Patch) (domain.Listing, error)
	// Delete removes a listing that has no adoption requests.
	Delete(ctx context.Context, id uuid.UUID) error
}

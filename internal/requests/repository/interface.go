package repository

import (
	"context"

	"katze_backend/internal/requests/domain"

	"github.com/google/uuid"
)

// ListParams filters request queries. Empty States means every state.
type ListParams struct {
	States    []domain.State
	ListingID *uuid.UUID
}

// Counter bumps a listing's request count. The in-memory repository uses it
// where Postgres runs the same update inside the insert transaction.
type Counter interface {
	IncrementRequestCount(ctx context.Context, listingID uuid.UUID) (int, error)
}

// Repository persists adoption requests.
type Repository interface {
	// CreateCounted stores the request and adds one to its listing's request
	// count as a single unit. On error neither change is kept.
	CreateCounted(ctx context.Context, req domain.Request) (domain.Request, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Request, error)
	List(ctx context.Context, params ListParams) ([]domain.Request, error)
	// UpdateState moves the request only if it is still in from.
	UpdateState(ctx context.Context, id uuid.UUID, from, to domain.State) (domain.Request, error)
}

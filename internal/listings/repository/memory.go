package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"katze_backend/internal/listings/domain"
	"katze_backend/platform/apperr"

	"github.com/google/uuid"
)

// MemoryRepo implements Repository in process memory.
type MemoryRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Listing
	now   func() time.Time
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryRepo {
	return &MemoryRepo{items: make(map[uuid.UUID]domain.Listing), now: time.Now}
}

var _ Repository = (*MemoryRepo)(nil)

func (r *MemoryRepo) Create(_ context.Context, l domain.Listing) (domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := r.now()
	l.CreatedAt, l.UpdatedAt = now, now
	l.Photos = slices.Clone(l.Photos)
	r.items[l.ID] = l
	return l, nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.items[id]
	if !ok {
		return domain.Listing{}, apperr.NotFound(listingNotFoundMessage)
	}
	return l, nil
}

func (r *MemoryRepo) List(_ context.Context, params ListParams) ([]domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]domain.Listing, 0, len(r.items))
	for _, l := range r.items {
		if len(params.States) > 0 && !slices.Contains(params.States, l.State) {
			continue
		}
		if params.SubmittedBy != nil && l.SubmittedBy != *params.SubmittedBy {
			continue
		}
		items = append(items, l)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *MemoryRepo) UpdateState(_ context.Context, id uuid.UUID, from, to domain.State) (domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.items[id]
	if !ok {
		return domain.Listing{}, apperr.NotFound(listingNotFoundMessage)
	}
	if l.State != from {
		return domain.Listing{}, apperr.Transition("listing state changed concurrently")
	}
	l.State = to
	l.UpdatedAt = r.now()
	r.items[id] = l
	return l, nil
}

func (r *MemoryRepo) Update(_ context.Context, id uuid.UUID, p domain.Patch) (domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.items[id]
	if !ok {
		return domain.Listing{}, apperr.NotFound(listingNotFoundMessage)
	}
	p.Apply(&l)
	l.UpdatedAt = r.now()
	r.items[id] = l
	return l, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.items[id]
	if !ok {
		return apperr.NotFound(listingNotFoundMessage)
	}
	if l.RequestCount > 0 {
		return apperr.Conflict(listingHasRequestsMessage)
	}
	delete(r.items, id)
	return nil
}

// IncrementRequestCount is the in-memory counterpart of CountRequest.
func (r *MemoryRepo) IncrementRequestCount(_ context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.items[id]
	if !ok {
		return 0, apperr.NotFound(listingNotFoundMessage)
	}
	l.RequestCount++
	r.items[id] = l
	return l.RequestCount, nil
}

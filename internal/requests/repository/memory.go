package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"katze_backend/internal/requests/domain"
	"katze_backend/platform/apperr"

	"github.com/google/uuid"
)

// MemoryRepo implements Repository in process memory.
type MemoryRepo struct {
	mu      sync.Mutex
	items   map[uuid.UUID]domain.Request
	counter Counter
	now     func() time.Time
}

// NewMemory creates an empty in-memory repository that counts requests through counter.
func NewMemory(counter Counter) *MemoryRepo {
	return &MemoryRepo{items: make(map[uuid.UUID]domain.Request), counter: counter, now: time.Now}
}

var _ Repository = (*MemoryRepo)(nil)

// CreateCounted counts first and stores only when the count succeeded.
func (r *MemoryRepo) CreateCounted(ctx context.Context, req domain.Request) (domain.Request, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count, err := r.counter.IncrementRequestCount(ctx, req.ListingID)
	if err != nil {
		return domain.Request{}, 0, err
	}

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	now := r.now()
	req.CreatedAt, req.UpdatedAt = now, now
	r.items[req.ID] = req
	return req, count, nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.items[id]
	if !ok {
		return domain.Request{}, apperr.NotFound(requestNotFoundMessage)
	}
	return req, nil
}

func (r *MemoryRepo) List(_ context.Context, params ListParams) ([]domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]domain.Request, 0, len(r.items))
	for _, req := range r.items {
		if len(params.States) > 0 && !slices.Contains(params.States, req.State) {
			continue
		}
		if params.ListingID != nil && req.ListingID != *params.ListingID {
			continue
		}
		items = append(items, req)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *MemoryRepo) UpdateState(_ context.Context, id uuid.UUID, from, to domain.State) (domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.items[id]
	if !ok {
		return domain.Request{}, apperr.NotFound(requestNotFoundMessage)
	}
	if req.State != from {
		return domain.Request{}, apperr.Transition("adoption request state changed concurrently")
	}
	req.State = to
	req.UpdatedAt = r.now()
	r.items[id] = req
	return req, nil
}

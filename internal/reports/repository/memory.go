package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"katze_backend/internal/reports/domain"
	"katze_backend/platform/apperr"

	"github.com/google/uuid"
)

// MemoryRepo implements Repository in process memory.
type MemoryRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Report
	now   func() time.Time
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryRepo {
	return &MemoryRepo{items: make(map[uuid.UUID]domain.Report), now: time.Now}
}

var _ Repository = (*MemoryRepo)(nil)

func (r *MemoryRepo) Create(_ context.Context, rep domain.Report) (domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	now := r.now()
	rep.CreatedAt, rep.UpdatedAt = now, now
	r.items[rep.ID] = rep
	return rep, nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.items[id]
	if !ok {
		return domain.Report{}, apperr.NotFound(reportNotFoundMessage)
	}
	return rep, nil
}

func (r *MemoryRepo) List(_ context.Context, params ListParams) ([]domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]domain.Report, 0, len(r.items))
	for _, rep := range r.items {
		if len(params.States) > 0 && !slices.Contains(params.States, rep.State) {
			continue
		}
		if params.SubmittedBy != nil && rep.SubmittedBy != *params.SubmittedBy {
			continue
		}
		items = append(items, rep)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *MemoryRepo) UpdateState(_ context.Context, id uuid.UUID, from, to domain.State) (domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.items[id]
	if !ok {
		return domain.Report{}, apperr.NotFound(reportNotFoundMessage)
	}
	if rep.State != from {
		return domain.Report{}, apperr.Transition("report state changed concurrently")
	}
	rep.State = to
	rep.UpdatedAt = r.now()
	r.items[id] = rep
	return rep, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return apperr.NotFound(reportNotFoundMessage)
	}
	delete(r.items, id)
	return nil
}

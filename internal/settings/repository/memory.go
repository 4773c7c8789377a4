package repository

import (
	"context"
	"sync"
	"time"

	"katze_backend/internal/settings/domain"
)

// MemoryRepo implements Repository in process memory.
type MemoryRepo struct {
	mu       sync.Mutex
	settings domain.Settings
}

// NewMemory creates an empty in-memory settings store.
func NewMemory() *MemoryRepo {
	return &MemoryRepo{settings: domain.Settings{UpdatedAt: time.Now()}}
}

var _ Repository = (*MemoryRepo)(nil)

func (r *MemoryRepo) Get(context.Context) (domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings, nil
}

func (r *MemoryRepo) Update(_ context.Context, p domain.Patch) (domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.HeroImageURL != nil {
		r.settings.HeroImageURL = p.HeroImageURL
	}
	if p.DonationQRURL != nil {
		r.settings.DonationQRURL = p.DonationQRURL
	}
	if p.DonationURL != nil {
		r.settings.DonationURL = p.DonationURL
	}
	updatedBy := p.UpdatedBy
	r.settings.UpdatedBy = &updatedBy
	r.settings.UpdatedAt = time.Now()
	return r.settings, nil
}

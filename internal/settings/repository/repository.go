package repository

import (
	"context"
	"fmt"

	"katze_backend/internal/settings/domain"
	"katze_backend/platform/apperr"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the settings singleton.
type Repository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Update(ctx context.Context, patch domain.Patch) (domain.Settings, error)
}

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new settings repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func (r *Repo) Get(ctx context.Context) (domain.Settings, error) {
	query := `SELECT hero_image_url, donation_qr_url, donation_url, updated_by, updated_at FROM site_settings WHERE id = 1`

	var s domain.Settings
	if err := r.pool.QueryRow(ctx, query).Scan(&s.HeroImageURL, &s.DonationQRURL, &s.DonationURL, &s.UpdatedBy, &s.UpdatedAt); err != nil {
		return domain.Settings{}, apperr.Persistence("failed to load settings", fmt.Errorf("get settings: %w", err))
	}
	return s, nil
}

func (r *Repo) Update(ctx context.Context, p domain.Patch) (domain.Settings, error) {
	query := `
		INSERT INTO site_settings (id, hero_image_url, donation_qr_url, donation_url, updated_by, updated_at)
		VALUES (1, $1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			hero_image_url = COALESCE(EXCLUDED.hero_image_url, site_settings.hero_image_url),
			donation_qr_url = COALESCE(EXCLUDED.donation_qr_url, site_settings.donation_qr_url),
			donation_url = COALESCE(EXCLUDED.donation_url, site_settings.donation_url),
			updated_by = EXCLUDED.updated_by,
			updated_at = now()
		RETURNING hero_image_url, donation_qr_url, donation_url, updated_by, updated_at`

	var s domain.Settings
	err := r.pool.QueryRow(ctx, query, p.HeroImageURL, p.DonationQRURL, p.DonationURL, p.UpdatedBy).
		Scan(&s.HeroImageURL, &s.DonationQRURL, &s.DonationURL, &s.UpdatedBy, &s.UpdatedAt)
	if err != nil {
		return domain.Settings{}, apperr.Persistence("failed to save settings", fmt.Errorf("update settings: %w", err))
	}
	return s, nil
}

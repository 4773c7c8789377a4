package repository

import (
	"context"
	"errors"
	"fmt"

	"katze_backend/internal/listings/domain"
	"katze_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	listingNotFoundMessage    = "listing not found"
	listingHasRequestsMessage = "listing has adoption requests and cannot be deleted"
	pgForeignKeyViolation     = "23503"
)

const listingColumns = `id, name, description, age_label, temperament, health_status, photos, location,
	state, submitted_by, submitter_role, request_count, created_at, updated_at`

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new listings repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func scanListing(row pgx.Row) (domain.Listing, error) {
	var l domain.Listing
	var state string
	err := row.Scan(&l.ID, &l.Name, &l.Description, &l.AgeLabel, &l.Temperament, &l.HealthStatus,
		&l.Photos, &l.Location, &state, &l.SubmittedBy, &l.SubmitterRole, &l.RequestCount,
		&l.CreatedAt, &l.UpdatedAt)
	l.State = domain.State(state)
	return l, err
}

// Create inserts a listing.
func (r *Repo) Create(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	query := `
		INSERT INTO cat_listings (id, name, description, age_label, temperament, health_status, photos,
			location, state, submitted_by, submitter_role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + listingColumns

	created, err := scanListing(r.pool.QueryRow(ctx, query, l.ID, l.Name, l.Description, l.AgeLabel,
		l.Temperament, l.HealthStatus, l.Photos, l.Location, string(l.State), l.SubmittedBy, l.SubmitterRole))
	if err != nil {
		return domain.Listing{}, apperr.Persistence("failed to save listing", fmt.Errorf("create listing: %w", err))
	}
	return created, nil
}

// GetByID loads one listing.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM cat_listings WHERE id = $1`

	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Listing{}, apperr.NotFound(listingNotFoundMessage)
		}
		return domain.Listing{}, apperr.Persistence("failed to load listing", fmt.Errorf("get listing: %w", err))
	}
	return l, nil
}

// List returns listings newest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]domain.Listing, error) {
	states := make([]string, 0, len(params.States))
	for _, s := range params.States {
		states = append(states, string(s))
	}

	query := `
		SELECT ` + listingColumns + `
		FROM cat_listings
		WHERE (cardinality($1::text[]) = 0 OR state = ANY($1::text[]))
		  AND ($2::uuid IS NULL OR submitted_by = $2)
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, states, params.SubmittedBy)
	if err != nil {
		return nil, apperr.Persistence("failed to list listings", fmt.Errorf("list listings: %w", err))
	}
	defer rows.Close()

	items := make([]domain.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, apperr.Persistence("failed to list listings", fmt.Errorf("scan listing: %w", err))
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to list listings", fmt.Errorf("iterate listings: %w", err))
	}
	return items, nil
}

// UpdateState is a compare-and-set on the state column.
func (r *Repo) UpdateState(ctx context.Context, id uuid.UUID, from, to domain.State) (domain.Listing, error) {
	query := `
		UPDATE cat_listings
		SET state = $3, updated_at = now()
		WHERE id = $1 AND state = $2
		RETURNING ` + listingColumns

	l, err := scanListing(r.pool.QueryRow(ctx, query, id, string(from), string(to)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Listing{}, apperr.Transition("listing state changed concurrently")
		}
		return domain.Listing{}, apperr.Persistence("failed to update listing", fmt.Errorf("update listing state: %w", err))
	}
	return l, nil
}

// Update applies the patch; state and request_count are left alone.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, p domain.Patch) (domain.Listing, error) {
	query := `
		UPDATE cat_listings
		SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			age_label = COALESCE($4, age_label),
			temperament = COALESCE($5, temperament),
			health_status = COALESCE($6, health_status),
			location = COALESCE($7, location),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + listingColumns

	l, err := scanListing(r.pool.QueryRow(ctx, query, id, p.Name, p.Description, p.AgeLabel,
		p.Temperament, p.HealthStatus, p.Location))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Listing{}, apperr.NotFound(listingNotFoundMessage)
		}
		return domain.Listing{}, apperr.Persistence("failed to update listing", fmt.Errorf("update listing: %w", err))
	}
	return l, nil
}

// Delete removes the listing unless adoption requests point at it.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM cat_listings WHERE id = $1 AND request_count = 0`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return apperr.Conflict(listingHasRequestsMessage)
		}
		return apperr.Persistence("failed to delete listing", fmt.Errorf("delete listing: %w", err))
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cat_listings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return apperr.Persistence("failed to delete listing", fmt.Errorf("check listing: %w", err))
	}
	if exists {
		return apperr.Conflict(listingHasRequestsMessage)
	}
	return apperr.NotFound(listingNotFoundMessage)
}

// CountRequest bumps the request counter inside tx, so the adoption request
// insert and its count commit together.
func CountRequest(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int, error) {
	query := `
		UPDATE cat_listings
		SET request_count = request_count + 1, updated_at = now()
		WHERE id = $1
		RETURNING request_count`

	var count int
	if err := tx.QueryRow(ctx, query, id).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound(listingNotFoundMessage)
		}
		return 0, apperr.Persistence("failed to count request", fmt.Errorf("increment request count: %w", err))
	}
	return count, nil
}

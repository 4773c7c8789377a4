package repository

import (
	"context"
	"errors"
	"fmt"

	listingrepo "katze_backend/internal/listings/repository"
	"katze_backend/internal/requests/domain"
	"katze_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestNotFoundMessage = "adoption request not found"

const pgForeignKeyViolation = "23503"

const requestColumns = `id, listing_id, applicant_name, phone, email, motive, housing, has_safety_netting,
	has_yard, has_other_pets, has_children, child_count, state, submitted_by, created_at, updated_at`

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new adoption requests repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func scanRequest(row pgx.Row) (domain.Request, error) {
	var r domain.Request
	var housing, state string
	err := row.Scan(&r.ID, &r.ListingID, &r.ApplicantName, &r.Phone, &r.Email, &r.Motive, &housing,
		&r.HasSafetyNetting, &r.HasYard, &r.HasOtherPets, &r.HasChildren, &r.ChildCount, &state,
		&r.SubmittedBy, &r.CreatedAt, &r.UpdatedAt)
	r.Housing = domain.Housing(housing)
	r.State = domain.State(state)
	return r, err
}

func (r *Repo) CreateCounted(ctx context.Context, req domain.Request) (domain.Request, int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Request{}, 0, apperr.Persistence("failed to save adoption request", fmt.Errorf("begin request tx: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO adoption_requests (id, listing_id, applicant_name, phone, email, motive, housing,
			has_safety_netting, has_yard, has_other_pets, has_children, child_count, state, submitted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + requestColumns

	created, err := scanRequest(tx.QueryRow(ctx, query, req.ID, req.ListingID, req.ApplicantName, req.Phone,
		req.Email, req.Motive, string(req.Housing), req.HasSafetyNetting, req.HasYard, req.HasOtherPets,
		req.HasChildren, req.ChildCount, string(req.State), req.SubmittedBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.Request{}, 0, apperr.NotFound("listing not found")
		}
		return domain.Request{}, 0, apperr.Persistence("failed to save adoption request", fmt.Errorf("create request: %w", err))
	}

	count, err := listingrepo.CountRequest(ctx, tx, req.ListingID)
	if err != nil {
		return domain.Request{}, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Request{}, 0, apperr.Persistence("failed to save adoption request", fmt.Errorf("commit request tx: %w", err))
	}
	return created, count, nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM adoption_requests WHERE id = $1`

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Request{}, apperr.NotFound(requestNotFoundMessage)
		}
		return domain.Request{}, apperr.Persistence("failed to load adoption request", fmt.Errorf("get request: %w", err))
	}
	return req, nil
}

func (r *Repo) List(ctx context.Context, params ListParams) ([]domain.Request, error) {
	states := make([]string, 0, len(params.States))
	for _, s := range params.States {
		states = append(states, string(s))
	}

	query := `
		SELECT ` + requestColumns + `
		FROM adoption_requests
		WHERE (cardinality($1::text[]) = 0 OR state = ANY($1::text[]))
		  AND ($2::uuid IS NULL OR listing_id = $2)
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, states, params.ListingID)
	if err != nil {
		return nil, apperr.Persistence("failed to list adoption requests", fmt.Errorf("list requests: %w", err))
	}
	defer rows.Close()

	items := make([]domain.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, apperr.Persistence("failed to list adoption requests", fmt.Errorf("scan request: %w", err))
		}
		items = append(items, req)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to list adoption requests", fmt.Errorf("iterate requests: %w", err))
	}
	return items, nil
}

func (r *Repo) UpdateState(ctx context.Context, id uuid.UUID, from, to domain.State) (domain.Request, error) {
	query := `
		UPDATE adoption_requests
		SET state = $3, updated_at = now()
		WHERE id = $1 AND state = $2
		RETURNING ` + requestColumns

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id, string(from), string(to)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Request{}, apperr.Transition("adoption request state changed concurrently")
		}
		return domain.Request{}, apperr.Persistence("failed to update adoption request", fmt.Errorf("update request state: %w", err))
	}
	return req, nil
}

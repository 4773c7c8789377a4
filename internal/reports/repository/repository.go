package repository

import (
	"context"
	"errors"
	"fmt"

	"katze_backend/internal/reports/domain"
	"katze_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportNotFoundMessage = "report not found"

const reportColumns = `id, pet_name, description, photo_url, zone, contact, sighted_at, state,
	submitted_by, submitter_role, created_at, updated_at`

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new reports repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func scanReport(row pgx.Row) (domain.Report, error) {
	var r domain.Report
	var state string
	err := row.Scan(&r.ID, &r.PetName, &r.Description, &r.PhotoURL, &r.Zone, &r.Contact, &r.SightedAt,
		&state, &r.SubmittedBy, &r.SubmitterRole, &r.CreatedAt, &r.UpdatedAt)
	r.State = domain.State(state)
	return r, err
}

func (r *Repo) Create(ctx context.Context, rep domain.Report) (domain.Report, error) {
	query := `
		INSERT INTO lost_reports (id, pet_name, description, photo_url, zone, contact, sighted_at, state,
			submitted_by, submitter_role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + reportColumns

	created, err := scanReport(r.pool.QueryRow(ctx, query, rep.ID, rep.PetName, rep.Description, rep.PhotoURL,
		rep.Zone, rep.Contact, rep.SightedAt, string(rep.State), rep.SubmittedBy, rep.SubmitterRole))
	if err != nil {
		return domain.Report{}, apperr.Persistence("failed to save report", fmt.Errorf("create report: %w", err))
	}
	return created, nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM lost_reports WHERE id = $1`

	rep, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Report{}, apperr.NotFound(reportNotFoundMessage)
		}
		return domain.Report{}, apperr.Persistence("failed to load report", fmt.Errorf("get report: %w", err))
	}
	return rep, nil
}

func (r *Repo) List(ctx context.Context, params ListParams) ([]domain.Report, error) {
	states := make([]string, 0, len(params.States))
	for _, s := range params.States {
		states = append(states, string(s))
	}

	query := `
		SELECT ` + reportColumns + `
		FROM lost_reports
		WHERE (cardinality($1::text[]) = 0 OR state = ANY($1::text[]))
		  AND ($2::uuid IS NULL OR submitted_by = $2)
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, states, params.SubmittedBy)
	if err != nil {
		return nil, apperr.Persistence("failed to list reports", fmt.Errorf("list reports: %w", err))
	}
	defer rows.Close()

	items := make([]domain.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, apperr.Persistence("failed to list reports", fmt.Errorf("scan report: %w", err))
		}
		items = append(items, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to list reports", fmt.Errorf("iterate reports: %w", err))
	}
	return items, nil
}

func (r *Repo) UpdateState(ctx context.Context, id uuid.UUID, from, to domain.State) (domain.Report, error) {
	query := `
		UPDATE lost_reports
		SET state = $3, updated_at = now()
		WHERE id = $1 AND state = $2
		RETURNING ` + reportColumns

	rep, err := scanReport(r.pool.QueryRow(ctx, query, id, string(from), string(to)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Report{}, apperr.Transition("report state changed concurrently")
		}
		return domain.Report{}, apperr.Persistence("failed to update report", fmt.Errorf("update report state: %w", err))
	}
	return rep, nil
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM lost_reports WHERE id = $1`, id)
	if err != nil {
		return apperr.Persistence("failed to delete report", fmt.Errorf("delete report: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(reportNotFoundMessage)
	}
	return nil
}

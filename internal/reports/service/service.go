package service

import (
	"context"
	"strings"
	"time"

	"katze_backend/internal/authz"
	"katze_backend/internal/intake"
	"katze_backend/internal/reports/domain"
	"katze_backend/internal/reports/repository"
	"katze_backend/internal/reports/transport"
	"katze_backend/platform/apperr"
	"katze_backend/platform/logger"
	"katze_backend/platform/metrics"
	"katze_backend/platform/sanitize"
	"katze_backend/platform/validator"

	"github.com/google/uuid"
)

const sightedDateLayout = "2006-01-02"

// Pipeline runs image intake around persistence.
type Pipeline interface {
	Run(ctx context.Context, upload *intake.Upload, opts intake.Options, persist intake.PersistFunc) error
}

// Service provides business logic for lost-pet reports.
type Service struct {
	repo     repository.Repository
	pipeline Pipeline
	bucket   string
	can      authz.Capability
	val      *validator.Validator
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New creates a new reports service.
func New(repo repository.Repository, pipeline Pipeline, bucket string, can authz.Capability, val *validator.Validator, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{repo: repo, pipeline: pipeline, bucket: bucket, can: can, val: val, log: log, metrics: m, now: time.Now}
}

// Create stages and uploads the photo without classification, then persists the report.
func (s *Service) Create(ctx context.Context, actor authz.Principal, req transport.CreateReportRequest, photo *intake.Upload) (domain.Report, error) {
	if !s.can.Can(authz.ActionSubmit, authz.Subject{Actor: actor}) {
		return domain.Report{}, apperr.Unauthorized("login required to publish a report")
	}
	if err := s.val.Struct(req); err != nil {
		return domain.Report{}, apperr.Validation("validation failed").WithDetails(validator.FieldErrors(err))
	}
	sightedAt, err := s.parseSightedAt(req.SightedAt)
	if err != nil {
		return domain.Report{}, err
	}

	report := domain.Report{
		ID:            uuid.New(),
		PetName:       sanitize.TextPtr(&req.PetName),
		Description:   sanitize.Text(req.Description),
		Zone:          sanitize.Line(req.Zone),
		Contact:       sanitize.Line(req.Contact),
		SightedAt:     sightedAt,
		State:         domain.InitialState(s.can, actor),
		SubmittedBy:   actor.ID,
		SubmitterRole: string(actor.Role),
	}

	var created domain.Report
	err = s.pipeline.Run(ctx, photo, intake.Options{
		Bucket: s.bucket,
		Folder: "reports/" + actor.ID.String(),
	}, func(ctx context.Context, url string) error {
		report.PhotoURL = url
		var err error
		created, err = s.repo.Create(ctx, report)
		return err
	})
	if err != nil {
		return domain.Report{}, err
	}

	s.metrics.Submission("report", string(created.State))
	s.log.Info("report created", "id", created.ID, "state", created.State, "submitted_by", actor.ID)
	return created, nil
}

func (s *Service) parseSightedAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(sightedDateLayout, raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validation("validation failed").
		WithDetails(map[string]string{"sightedAt": "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"})
}

// Transition moves a report to another state when the table and guards allow it.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to domain.State, actor authz.Principal) (domain.Report, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Report{}, err
	}

	subject := authz.Subject{Actor: actor, Owner: current.SubmittedBy}
	if err := domain.Lifecycle.Check(s.can, subject, current.State, to); err != nil {
		return domain.Report{}, err
	}

	updated, err := s.repo.UpdateState(ctx, id, current.State, to)
	if err != nil {
		return domain.Report{}, err
	}

	s.metrics.Transition("report", string(to))
	s.log.Transition("report", id.String(), string(current.State), string(to), actor.ID.String())
	return updated, nil
}

// MarkFound is the submitter's self-service transition approved -> found.
func (s *Service) MarkFound(ctx context.Context, id uuid.UUID, actor authz.Principal) (domain.Report, error) {
	return s.Transition(ctx, id, domain.StateFound, actor)
}

// ListPublic returns approved reports.
func (s *Service) ListPublic(ctx context.Context) ([]domain.Report, error) {
	return s.repo.List(ctx, repository.ListParams{States: []domain.State{domain.StateApproved}})
}

// ListMine returns every report submitted by the actor.
func (s *Service) ListMine(ctx context.Context, actor authz.Principal) ([]domain.Report, error) {
	if actor.Anonymous() {
		return nil, apperr.Unauthorized("login required")
	}
	return s.repo.List(ctx, repository.ListParams{SubmittedBy: &actor.ID})
}

// List returns reports in the given states without visibility checks.
func (s *Service) List(ctx context.Context, states []domain.State) ([]domain.Report, error) {
	return s.repo.List(ctx, repository.ListParams{States: states})
}

// Delete removes a report. Staff only; the stored photo is left in place.
func (s *Service) Delete(ctx context.Context, actor authz.Principal, id uuid.UUID) error {
	if actor.Anonymous() {
		return apperr.Unauthorized("login required")
	}
	if !s.can.Can(authz.ActionModerate, authz.Subject{Actor: actor}) {
		return apperr.Forbidden("only moderators and admins can delete reports")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("report deleted", "id", id, "actor_id", actor.ID)
	return nil
}

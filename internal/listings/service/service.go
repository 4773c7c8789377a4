package service

import (
	"context"

	"katze_backend/internal/authz"
	"katze_backend/internal/intake"
	"katze_backend/internal/listings/domain"
	"katze_backend/internal/listings/repository"
	"katze_backend/internal/listings/transport"
	"katze_backend/platform/apperr"
	"katze_backend/platform/logger"
	"katze_backend/platform/metrics"
	"katze_backend/platform/sanitize"
	"katze_backend/platform/validator"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const summaryFetchLimit = 8

// Pipeline runs image intake around persistence.
type Pipeline interface {
	Run(ctx context.Context, upload *intake.Upload, opts intake.Options, persist intake.PersistFunc) error
}

// Service provides business logic for cat listings.
type Service struct {
	repo     repository.Repository
	pipeline Pipeline
	bucket   string
	can      authz.Capability
	val      *validator.Validator
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// New creates a new listings service.
func New(repo repository.Repository, pipeline Pipeline, bucket string, can authz.Capability, val *validator.Validator, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{repo: repo, pipeline: pipeline, bucket: bucket, can: can, val: val, log: log, metrics: m}
}

// Create validates the fields, gates and uploads the photo, then persists the
// listing in its initial state.
func (s *Service) Create(ctx context.Context, actor authz.Principal, req transport.CreateListingRequest, photo *intake.Upload) (domain.Listing, error) {
	if !s.can.Can(authz.ActionSubmit, authz.Subject{Actor: actor}) {
		return domain.Listing{}, apperr.Unauthorized("login required to publish a cat")
	}
	if err := s.val.Struct(req); err != nil {
		return domain.Listing{}, apperr.Validation("validation failed").WithDetails(validator.FieldErrors(err))
	}

	listing := domain.Listing{
		ID:            uuid.New(),
		Name:          sanitize.Line(req.Name),
		Description:   sanitize.Text(req.Description),
		AgeLabel:      sanitize.Line(req.AgeLabel),
		Temperament:   sanitize.Text(req.Temperament),
		HealthStatus:  sanitize.Text(req.HealthStatus),
		Location:      sanitize.TextPtr(&req.Location),
		State:         domain.InitialState(s.can, actor),
		SubmittedBy:   actor.ID,
		SubmitterRole: string(actor.Role),
	}

	var created domain.Listing
	err := s.pipeline.Run(ctx, photo, intake.Options{
		Gated:  true,
		Bucket: s.bucket,
		Folder: "listings/" + actor.ID.String(),
	}, func(ctx context.Context, url string) error {
		listing.Photos = []string{url}
		var err error
		created, err = s.repo.Create(ctx, listing)
		return err
	})
	if err != nil {
		return domain.Listing{}, err
	}

	s.metrics.Submission("listing", string(created.State))
	s.log.Info("listing created", "id", created.ID, "state", created.State, "submitted_by", actor.ID)
	return created, nil
}

// Transition moves a listing to another state when the table and guards allow it.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to domain.State, actor authz.Principal) (domain.Listing, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}

	subject := authz.Subject{Actor: actor, Owner: current.SubmittedBy}
	if err := domain.Lifecycle.Check(s.can, subject, current.State, to); err != nil {
		return domain.Listing{}, err
	}

	updated, err := s.repo.UpdateState(ctx, id, current.State, to)
	if err != nil {
		return domain.Listing{}, err
	}

	s.metrics.Transition("listing", string(to))
	s.log.Transition("listing", id.String(), string(current.State), string(to), actor.ID.String())
	return updated, nil
}

// Get returns a listing visible to the viewer. Hidden listings are only shown
// to staff and to their submitter.
func (s *Service) Get(ctx context.Context, id uuid.UUID, viewer authz.Principal) (domain.Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if l.State.Public() {
		return l, nil
	}
	subject := authz.Subject{Actor: viewer, Owner: l.SubmittedBy}
	if s.can.Can(authz.ActionModerate, subject) || s.can.Can(authz.ActionActAsOwner, subject) {
		return l, nil
	}
	return domain.Listing{}, apperr.NotFound("listing not found")
}

// ListPublic returns listings in public states.
func (s *Service) ListPublic(ctx context.Context) ([]domain.Listing, error) {
	return s.repo.List(ctx, repository.ListParams{States: domain.PublicStates})
}

// List returns listings in the given states without visibility checks.
func (s *Service) List(ctx context.Context, states []domain.State) ([]domain.Listing, error) {
	return s.repo.List(ctx, repository.ListParams{States: states})
}

// Summaries loads the listings with the given IDs concurrently. Missing IDs are skipped.
func (s *Service) Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Listing, error) {
	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	results := make(chan domain.Listing, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryFetchLimit)
	for id := range unique {
		g.Go(func() error {
			l, err := s.repo.GetByID(gctx, id)
			if apperr.Is(err, apperr.KindNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			results <- l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)

	out := make(map[uuid.UUID]domain.Listing, len(unique))
	for l := range results {
		out[l.ID] = l
	}
	return out, nil
}

// EnsureAdoptable fails unless the listing exists and accepts adoption requests.
func (s *Service) EnsureAdoptable(ctx context.Context, id uuid.UUID) error {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !l.State.Adoptable() {
		return apperr.Validation("this cat is not open for adoption requests").
			WithDetails(map[string]string{"state": string(l.State)})
	}
	return nil
}

// ListMine returns every listing submitted by the actor, whatever its state.
func (s *Service) ListMine(ctx context.Context, actor authz.Principal) ([]domain.Listing, error) {
	if actor.Anonymous() {
		return nil, apperr.Unauthorized("login required")
	}
	return s.repo.List(ctx, repository.ListParams{SubmittedBy: &actor.ID})
}

// Update edits a listing's descriptive fields. The state only moves through Transition.
func (s *Service) Update(ctx context.Context, actor authz.Principal, id uuid.UUID, req transport.UpdateListingRequest) (domain.Listing, error) {
	if err := s.staffOnly(actor); err != nil {
		return domain.Listing{}, err
	}
	if err := s.val.Struct(req); err != nil {
		return domain.Listing{}, apperr.Validation("validation failed").WithDetails(validator.FieldErrors(err))
	}

	patch := domain.Patch{
		Name:         clean(req.Name, sanitize.Line),
		Description:  clean(req.Description, sanitize.Text),
		AgeLabel:     clean(req.AgeLabel, sanitize.Line),
		Temperament:  clean(req.Temperament, sanitize.Text),
		HealthStatus: clean(req.HealthStatus, sanitize.Text),
		Location:     clean(req.Location, sanitize.Line),
	}
	if patch.Empty() {
		return domain.Listing{}, apperr.Validation("no fields to update")
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return domain.Listing{}, err
	}

	s.log.Info("listing updated", "id", id, "actor_id", actor.ID)
	return updated, nil
}

// Delete removes a listing. Listings with adoption requests are kept.
func (s *Service) Delete(ctx context.Context, actor authz.Principal, id uuid.UUID) error {
	if err := s.staffOnly(actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("listing deleted", "id", id, "actor_id", actor.ID)
	return nil
}

func (s *Service) staffOnly(actor authz.Principal) error {
	if actor.Anonymous() {
		return apperr.Unauthorized("login required")
	}
	if !s.can.Can(authz.ActionModerate, authz.Subject{Actor: actor}) {
		return apperr.Forbidden("only moderators and admins can edit listings")
	}
	return nil
}

func clean(v *string, fn func(string) string) *string {
	if v == nil {
		return nil
	}
	out := fn(*v)
	return &out
}

package service

import (
	"context"
	"time"

	"katze_backend/internal/authz"
	"katze_backend/internal/dispatch"
	"katze_backend/internal/requests/domain"
	"katze_backend/internal/requests/repository"
	"katze_backend/internal/requests/transport"
	"katze_backend/platform/apperr"
	"katze_backend/platform/logger"
	"katze_backend/platform/metrics"
	"katze_backend/platform/phone"
	"katze_backend/platform/sanitize"
	"katze_backend/platform/validator"

	"github.com/google/uuid"
)

// Listings is the part of the listings context a request needs.
type Listings interface {
	EnsureAdoptable(ctx context.Context, id uuid.UUID) error
}

// Dispatcher hands events to the automation endpoint without blocking.
type Dispatcher interface {
	Dispatch(ev dispatch.AdoptionRequestEvent)
}

// Service provides business logic for adoption requests.
type Service struct {
	repo       repository.Repository
	listings   Listings
	dispatcher Dispatcher
	phones     *phone.Normalizer
	can        authz.Capability
	val        *validator.Validator
	log        *logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// New creates a new adoption requests service.
func New(repo repository.Repository, listings Listings, dispatcher Dispatcher, phones *phone.Normalizer, can authz.Capability, val *validator.Validator, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:       repo,
		listings:   listings,
		dispatcher: dispatcher,
		phones:     phones,
		can:        can,
		val:        val,
		log:        log,
		metrics:    m,
		now:        time.Now,
	}
}

// Create validates the application, applies the pre-filter, persists it,
// counts it against the listing and hands the event to the dispatcher.
// actor may be anonymous.
func (s *Service) Create(ctx context.Context, actor authz.Principal, req transport.CreateRequestRequest) (domain.Request, error) {
	if err := s.val.Struct(req); err != nil {
		return domain.Request{}, apperr.Validation("validation failed").WithDetails(validator.FieldErrors(err))
	}
	if req.HasChildren != (req.ChildCount > 0) {
		return domain.Request{}, apperr.Validation("validation failed").
			WithDetails(map[string]string{"childCount": "must be greater than zero exactly when hasChildren is set"})
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return domain.Request{}, apperr.Validation("validation failed").
			WithDetails(map[string]string{"listingId": "must be a valid UUID"})
	}
	if err := s.listings.EnsureAdoptable(ctx, listingID); err != nil {
		return domain.Request{}, err
	}

	housing := domain.Housing(req.Housing)
	request := domain.Request{
		ID:               uuid.New(),
		ListingID:        listingID,
		ApplicantName:    sanitize.Lower(req.ApplicantName),
		Phone:            s.phones.E164(req.Phone),
		Email:            sanitize.Lower(req.Email),
		Motive:           sanitize.Text(req.Motive),
		Housing:          housing,
		HasSafetyNetting: req.HasSafetyNetting,
		HasYard:          req.HasYard,
		HasOtherPets:     req.HasOtherPets,
		HasChildren:      req.HasChildren,
		ChildCount:       req.ChildCount,
		State:            domain.InitialState(housing, req.ChildCount),
	}
	if !actor.Anonymous() {
		request.SubmittedBy = &actor.ID
	}

	created, count, err := s.repo.CreateCounted(ctx, request)
	if err != nil {
		return domain.Request{}, err
	}

	s.dispatcher.Dispatch(eventFor(created, s.now()))
	s.metrics.Submission("request", string(created.State))
	s.log.Info("adoption request created", "id", created.ID, "listing_id", listingID, "state", created.State, "request_count", count)
	return created, nil
}

func eventFor(r domain.Request, at time.Time) dispatch.AdoptionRequestEvent {
	return dispatch.AdoptionRequestEvent{
		RequestID:     r.ID.String(),
		ListingID:     r.ListingID.String(),
		ApplicantName: r.ApplicantName,
		Email:         r.Email,
		Phone:         r.Phone,
		Housing:       string(r.Housing),
		ChildCount:    r.ChildCount,
		Motive:        r.Motive,
		State:         string(r.State),
		OccurredAt:    at.UTC(),
	}
}

// Transition moves a request to another state when the table and guards allow it.
// An approved request never changes its listing's state.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to domain.State, actor authz.Principal) (domain.Request, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Request{}, err
	}

	if err := domain.Lifecycle.Check(s.can, authz.Subject{Actor: actor}, current.State, to); err != nil {
		return domain.Request{}, err
	}

	updated, err := s.repo.UpdateState(ctx, id, current.State, to)
	if err != nil {
		return domain.Request{}, err
	}

	s.metrics.Transition("request", string(to))
	s.log.Transition("request", id.String(), string(current.State), string(to), actor.ID.String())
	return updated, nil
}

// List returns requests in the given states without visibility checks.
func (s *Service) List(ctx context.Context, states []domain.State) ([]domain.Request, error) {
	return s.repo.List(ctx, repository.ListParams{States: states})
}

// ListForListing returns the requests targeting one listing, optionally filtered by state.
func (s *Service) ListForListing(ctx context.Context, listingID uuid.UUID, states []domain.State) ([]domain.Request, error) {
	return s.repo.List(ctx, repository.ListParams{States: states, ListingID: &listingID})
}

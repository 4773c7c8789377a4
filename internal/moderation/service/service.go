// Package service is the staff-facing moderation surface over listings,
// reports and adoption requests.
package service

import (
	"context"
	"strings"

	"katze_backend/internal/authz"
	"katze_backend/internal/lifecycle"
	listingdomain "katze_backend/internal/listings/domain"
	reportdomain "katze_backend/internal/reports/domain"
	requestdomain "katze_backend/internal/requests/domain"
	"katze_backend/platform/apperr"

	"github.com/google/uuid"
)

// Kind names a moderated entity collection.
type Kind string

const (
	KindListings Kind = "listings"
	KindReports  Kind = "reports"
	KindRequests Kind = "requests"
)

// ParseKind validates a kind taken from a route.
func ParseKind(raw string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(raw))); k {
	case KindListings, KindReports, KindRequests:
		return k, nil
	default:
		return "", apperr.Validation("unknown entity kind").
			WithDetails(map[string]string{"kind": "must be one of listings, reports, requests"})
	}
}

// Listings is the moderation view of the listings context.
type Listings interface {
	List(ctx context.Context, states []listingdomain.State) ([]listingdomain.Listing, error)
	Transition(ctx context.Context, id uuid.UUID, to listingdomain.State, actor authz.Principal) (listingdomain.Listing, error)
	Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]listingdomain.Listing, error)
}

// Reports is the moderation view of the reports context.
type Reports interface {
	List(ctx context.Context, states []reportdomain.State) ([]reportdomain.Report, error)
	Transition(ctx context.Context, id uuid.UUID, to reportdomain.State, actor authz.Principal) (reportdomain.Report, error)
}

// Requests is the moderation view of the adoption requests context.
type Requests interface {
	List(ctx context.Context, states []requestdomain.State) ([]requestdomain.Request, error)
	ListForListing(ctx context.Context, listingID uuid.UUID, states []requestdomain.State) ([]requestdomain.Request, error)
	Transition(ctx context.Context, id uuid.UUID, to requestdomain.State, actor authz.Principal) (requestdomain.Request, error)
}

// RequestView is an adoption request joined with its target listing.
// Listing is nil when the listing could not be loaded.
type RequestView struct {
	Request requestdomain.Request
	Listing *listingdomain.Listing
}

// Page holds the result of a moderation query. Only the slice matching Kind is set.
type Page struct {
	Kind     Kind
	Listings []listingdomain.Listing
	Reports  []reportdomain.Report
	Requests []RequestView
}

// Len returns the number of items on the page.
func (p Page) Len() int {
	return len(p.Listings) + len(p.Reports) + len(p.Requests)
}

// Service answers staff queries and delegates transitions to the owning context.
type Service struct {
	listings Listings
	reports  Reports
	requests Requests
	can      authz.Capability
}

// New creates a moderation service.
func New(listings Listings, reports Reports, requests Requests, can authz.Capability) *Service {
	return &Service{listings: listings, reports: reports, requests: requests, can: can}
}

func (s *Service) authorize(actor authz.Principal) error {
	if actor.Anonymous() {
		return apperr.Unauthorized("login required")
	}
	if !s.can.Can(authz.ActionModerate, authz.Subject{Actor: actor}) {
		return apperr.Forbidden("moderation requires a moderator or admin role")
	}
	return nil
}

// ListPending returns every entity of kind still awaiting review.
func (s *Service) ListPending(ctx context.Context, actor authz.Principal, kind Kind) (Page, error) {
	return s.List(ctx, actor, kind, []string{"pending"})
}

// List returns entities of kind in the given states, or in every state when states is empty.
func (s *Service) List(ctx context.Context, actor authz.Principal, kind Kind, states []string) (Page, error) {
	if err := s.authorize(actor); err != nil {
		return Page{}, err
	}

	page := Page{Kind: kind}
	switch kind {
	case KindListings:
		filter, err := parseStates(listingdomain.Lifecycle, states)
		if err != nil {
			return Page{}, err
		}
		page.Listings, err = s.listings.List(ctx, filter)
		return page, err
	case KindReports:
		filter, err := parseStates(reportdomain.Lifecycle, states)
		if err != nil {
			return Page{}, err
		}
		page.Reports, err = s.reports.List(ctx, filter)
		return page, err
	case KindRequests:
		filter, err := parseStates(requestdomain.Lifecycle, states)
		if err != nil {
			return Page{}, err
		}
		items, err := s.requests.List(ctx, filter)
		if err != nil {
			return Page{}, err
		}
		page.Requests, err = s.joinListings(ctx, items)
		return page, err
	default:
		return Page{}, apperr.Validation("unknown entity kind")
	}
}

// ListListingRequests returns the adoption requests for one listing, joined
// with that listing, optionally filtered by state.
func (s *Service) ListListingRequests(ctx context.Context, actor authz.Principal, listingID uuid.UUID, states []string) (Page, error) {
	if err := s.authorize(actor); err != nil {
		return Page{}, err
	}
	filter, err := parseStates(requestdomain.Lifecycle, states)
	if err != nil {
		return Page{}, err
	}

	found, err := s.listings.Summaries(ctx, []uuid.UUID{listingID})
	if err != nil {
		return Page{}, err
	}
	if _, ok := found[listingID]; !ok {
		return Page{}, apperr.NotFound("listing not found")
	}

	items, err := s.requests.ListForListing(ctx, listingID, filter)
	if err != nil {
		return Page{}, err
	}
	page := Page{Kind: KindRequests}
	page.Requests, err = s.joinListings(ctx, items)
	return page, err
}

// Transition moves one entity of kind to the target state. Table and guard
// checks happen in the owning context.
func (s *Service) Transition(ctx context.Context, actor authz.Principal, kind Kind, id uuid.UUID, to string) (Page, error) {
	if err := s.authorize(actor); err != nil {
		return Page{}, err
	}

	page := Page{Kind: kind}
	switch kind {
	case KindListings:
		l, err := s.listings.Transition(ctx, id, listingdomain.State(to), actor)
		if err != nil {
			return Page{}, err
		}
		page.Listings = []listingdomain.Listing{l}
	case KindReports:
		r, err := s.reports.Transition(ctx, id, reportdomain.State(to), actor)
		if err != nil {
			return Page{}, err
		}
		page.Reports = []reportdomain.Report{r}
	case KindRequests:
		r, err := s.requests.Transition(ctx, id, requestdomain.State(to), actor)
		if err != nil {
			return Page{}, err
		}
		views, err := s.joinListings(ctx, []requestdomain.Request{r})
		if err != nil {
			return Page{}, err
		}
		page.Requests = views
	default:
		return Page{}, apperr.Validation("unknown entity kind")
	}
	return page, nil
}

func (s *Service) joinListings(ctx context.Context, items []requestdomain.Request) ([]RequestView, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, r := range items {
		ids = append(ids, r.ListingID)
	}
	summaries, err := s.listings.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]RequestView, 0, len(items))
	for _, r := range items {
		view := RequestView{Request: r}
		if l, ok := summaries[r.ListingID]; ok {
			view.Listing = &l
		}
		views = append(views, view)
	}
	return views, nil
}

func parseStates[S ~string](m *lifecycle.Machine[S], raw []string) ([]S, error) {
	out := make([]S, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		s := S(r)
		if !m.Valid(s) {
			return nil, apperr.Validation("unknown state").
				WithDetails(map[string]string{"state": r + " is not a " + m.Name() + " state"})
		}
		out = append(out, s)
	}
	return out, nil
}

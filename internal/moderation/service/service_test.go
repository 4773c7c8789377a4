package service

import (
	"context"
	"testing"

	"katze_backend/internal/authz"
	"katze_backend/internal/dispatch"
	listingdomain "katze_backend/internal/listings/domain"
	listingrepo "katze_backend/internal/listings/repository"
	listingservice "katze_backend/internal/listings/service"
	reportdomain "katze_backend/internal/reports/domain"
	reportrepo "katze_backend/internal/reports/repository"
	reportservice "katze_backend/internal/reports/service"
	requestdomain "katze_backend/internal/requests/domain"
	requestrepo "katze_backend/internal/requests/repository"
	requestservice "katze_backend/internal/requests/service"
	requesttransport "katze_backend/internal/requests/transport"
	"katze_backend/platform/apperr"
	"katze_backend/platform/logger"
	"katze_backend/platform/phone"
	"katze_backend/platform/validator"

	"github.com/google/uuid"
)

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(dispatch.AdoptionRequestEvent) {}

var (
	user      = authz.Principal{ID: uuid.New(), Role: authz.RoleUser}
	moderator = authz.Principal{ID: uuid.New(), Role: authz.RoleModerator}
)

type fixture struct {
	svc      *Service
	listings *listingrepo.MemoryRepo
	reports  *reportrepo.MemoryRepo
	requests *requestservice.Service
}

func newFixture() *fixture {
	can := authz.NewPolicy()
	val := validator.New()
	log := logger.NewNop()

	listings := listingrepo.NewMemory()
	reports := reportrepo.NewMemory()
	listingSvc := listingservice.New(listings, nil, "", can, val, log, nil)
	reportSvc := reportservice.New(reports, nil, "", can, val, log, nil)
	requestSvc := requestservice.New(requestrepo.NewMemory(listings), listingSvc, nopDispatcher{}, phone.NewNormalizer(""), can, val, log, nil)

	return &fixture{
		svc:      New(listingSvc, reportSvc, requestSvc, can),
		listings: listings,
		reports:  reports,
		requests: requestSvc,
	}
}

func (f *fixture) addListing(t *testing.T, name string, state listingdomain.State) listingdomain.Listing {
	t.Helper()
	l, err := f.listings.Create(context.Background(), listingdomain.Listing{
		ID:          uuid.New(),
		Name:        name,
		Photos:      []string{"memory://listing-photos/" + name + ".png"},
		State:       state,
		SubmittedBy: user.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(" Requests "); err != nil || k != KindRequests {
		t.Fatalf("ParseKind = %q, %v", k, err)
	}
	if _, err := ParseKind("cats"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestListRequiresStaff(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.ListPending(ctx, user, KindListings); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("user: err = %v, want forbidden", err)
	}
	if _, err := f.svc.ListPending(ctx, authz.Principal{}, KindListings); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("anonymous: err = %v, want unauthorized", err)
	}
}

func TestListPendingListings(t *testing.T) {
	f := newFixture()
	pending := f.addListing(t, "mishi", listingdomain.StatePending)
	f.addListing(t, "tom", listingdomain.StateListed)

	page, err := f.svc.ListPending(context.Background(), moderator, KindListings)
	if err != nil {
		t.Fatal(err)
	}
	if page.Len() != 1 || page.Listings[0].ID != pending.ID {
		t.Fatalf("page = %+v", page)
	}
}

func TestListUnknownStateIsValidation(t *testing.T) {
	f := newFixture()
	_, err := f.svc.List(context.Background(), moderator, KindReports, []string{"listed"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestListRequestsJoinsListing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := f.addListing(t, "mishi", listingdomain.StateListed)

	_, err := f.requests.Create(ctx, authz.Principal{}, requesttransport.CreateRequestRequest{
		ListingID:     l.ID.String(),
		ApplicantName: "Ana",
		Phone:         "5512345678",
		Email:         "ana@example.com",
		Motive:        "Me encantan los gatos",
		Housing:       "apartment",
		HasChildren:   true,
		ChildCount:    3,
	})
	if err != nil {
		t.Fatal(err)
	}

	page, err := f.svc.List(ctx, moderator, KindRequests, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(page.Requests))
	}
	view := page.Requests[0]
	if view.Request.State != requestdomain.StateRejected {
		t.Fatalf("state = %s, want rejected by pre-filter", view.Request.State)
	}
	if view.Listing == nil || view.Listing.Name != "mishi" {
		t.Fatalf("listing = %+v", view.Listing)
	}

	pending, err := f.svc.ListPending(ctx, moderator, KindRequests)
	if err != nil {
		t.Fatal(err)
	}
	if pending.Len() != 0 {
		t.Fatalf("pending = %d, want 0", pending.Len())
	}
}

func (f *fixture) apply(t *testing.T, listingID uuid.UUID, housing string, children int) {
	t.Helper()
	_, err := f.requests.Create(context.Background(), authz.Principal{}, requesttransport.CreateRequestRequest{
		ListingID:     listingID.String(),
		ApplicantName: "Ana",
		Phone:         "5512345678",
		Email:         "ana@example.com",
		Motive:        "Me encantan los gatos",
		Housing:       housing,
		HasChildren:   children > 0,
		ChildCount:    children,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestListListingRequests(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mishi := f.addListing(t, "mishi", listingdomain.StateListed)
	tom := f.addListing(t, "tom", listingdomain.StateListed)
	f.apply(t, mishi.ID, "house", 0)
	f.apply(t, mishi.ID, "apartment", 4)
	f.apply(t, tom.ID, "house", 0)

	page, err := f.svc.ListListingRequests(ctx, moderator, mishi.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(page.Requests))
	}
	for _, v := range page.Requests {
		if v.Request.ListingID != mishi.ID || v.Listing == nil || v.Listing.ID != mishi.ID {
			t.Fatalf("view = %+v", v)
		}
	}

	pending, err := f.svc.ListListingRequests(ctx, moderator, mishi.ID, []string{"pending"})
	if err != nil {
		t.Fatal(err)
	}
	if len(pending.Requests) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending.Requests))
	}

	if _, err := f.svc.ListListingRequests(ctx, moderator, uuid.New(), nil); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing listing: err = %v, want not found", err)
	}
	if _, err := f.svc.ListListingRequests(ctx, user, mishi.ID, nil); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("user: err = %v, want forbidden", err)
	}
}

func TestTransitionDelegates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := f.addListing(t, "mishi", listingdomain.StatePending)

	page, err := f.svc.Transition(ctx, moderator, KindListings, l.ID, "listed")
	if err != nil {
		t.Fatal(err)
	}
	if page.Listings[0].State != listingdomain.StateListed {
		t.Fatalf("state = %s", page.Listings[0].State)
	}

	if _, err := f.svc.Transition(ctx, moderator, KindListings, l.ID, "pending"); !apperr.Is(err, apperr.KindTransition) {
		t.Fatalf("listed -> pending: err = %v, want transition", err)
	}
	if _, err := f.svc.Transition(ctx, moderator, KindListings, l.ID, "sold"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("unknown target: err = %v, want validation", err)
	}
	if _, err := f.svc.Transition(ctx, user, KindListings, l.ID, "adopted"); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("user: err = %v, want forbidden", err)
	}
}

func TestStaffCannotMarkReportFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r, err := f.reports.Create(ctx, reportdomain.Report{ID: uuid.New(), State: reportdomain.StateApproved, SubmittedBy: user.ID})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Transition(ctx, moderator, KindReports, r.ID, "found"); !apperr.Is(err, apperr.KindTransition) {
		t.Fatalf("err = %v, want transition", err)
	}
}

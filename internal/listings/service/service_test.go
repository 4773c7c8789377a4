package service

import (
	"bytes"
	"context"
	"os"
	"testing"

	"katze_backend/internal/adapters/storage"
	"katze_backend/internal/authz"
	"katze_backend/internal/gate"
	"katze_backend/internal/intake"
	"katze_backend/internal/listings/domain"
	"katze_backend/internal/listings/repository"
	"katze_backend/internal/listings/transport"
	"katze_backend/platform/apperr"
	"katze_backend/platform/logger"
	"katze_backend/platform/validator"

	"github.com/google/uuid"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

type fakeClassifier struct {
	reply string
	calls int
}

func (f *fakeClassifier) Classify(context.Context, string, string) (string, error) {
	f.calls++
	return f.reply, nil
}

type fixture struct {
	svc        *Service
	repo       *repository.MemoryRepo
	store      *storage.MemoryService
	classifier *fakeClassifier
	stagingDir string
}

func newFixture(t *testing.T, reply string) *fixture {
	t.Helper()
	dir := t.TempDir()
	classifier := &fakeClassifier{reply: reply}
	g := gate.New(classifier, func(error) bool { return false }, nil, gate.WithPolicy(3, 0))
	store := storage.NewMemoryService()
	pipeline := intake.New(intake.NewStager(dir, 1<<20), g, store, logger.NewNop())
	repo := repository.NewMemory()

	return &fixture{
		svc:        New(repo, pipeline, "listing-photos", authz.NewPolicy(), validator.New(), logger.NewNop(), nil),
		repo:       repo,
		store:      store,
		classifier: classifier,
		stagingDir: dir,
	}
}

func (f *fixture) stagedFiles(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.stagingDir)
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func validRequest() transport.CreateListingRequest {
	return transport.CreateListingRequest{
		Name:         "Mishi",
		Description:  "Gata tranquila, le gusta dormir al sol",
		AgeLabel:     "2 años",
		Temperament:  "cariñosa",
		HealthStatus: "vacunada y esterilizada",
	}
}

func photo() *intake.Upload {
	return &intake.Upload{Filename: "mishi.png", ContentType: "image/png", Reader: bytes.NewReader(pngBytes)}
}

var (
	user      = authz.Principal{ID: uuid.New(), Role: authz.RoleUser}
	admin     = authz.Principal{ID: uuid.New(), Role: authz.RoleAdmin}
	moderator = authz.Principal{ID: uuid.New(), Role: authz.RoleModerator}
)

func TestCreateRejectedImagePersistsNothing(t *testing.T) {
	f := newFixture(t, "NO")

	_, err := f.svc.Create(context.Background(), user, validRequest(), photo())
	if !apperr.Is(err, apperr.KindContentRejected) {
		t.Fatalf("err = %v, want content rejected", err)
	}
	items, _ := f.repo.List(context.Background(), repository.ListParams{})
	if len(items) != 0 {
		t.Fatalf("listings = %d, want 0", len(items))
	}
	if f.store.Len() != 0 {
		t.Fatalf("uploads = %d, want 0", f.store.Len())
	}
	if f.stagedFiles(t) != 0 {
		t.Fatal("staged file left behind")
	}
}

func TestCreateAcceptedInitialStateByRole(t *testing.T) {
	tests := []struct {
		name  string
		actor authz.Principal
		want  domain.State
	}{
		{"user starts pending", user, domain.StatePending},
		{"moderator starts pending", moderator, domain.StatePending},
		{"admin is listed directly", admin, domain.StateListed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "YES")
			l, err := f.svc.Create(context.Background(), tt.actor, validRequest(), photo())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l.State != tt.want {
				t.Fatalf("state = %s, want %s", l.State, tt.want)
			}
			if len(l.Photos) != 1 || l.Photos[0] == "" {
				t.Fatalf("photos = %v", l.Photos)
			}
			if l.SubmittedBy != tt.actor.ID {
				t.Fatalf("submitted by = %s", l.SubmittedBy)
			}
			if f.stagedFiles(t) != 0 {
				t.Fatal("staged file left behind")
			}
		})
	}
}

func TestCreateEmptyDescriptionMakesNoCalls(t *testing.T) {
	f := newFixture(t, "YES")
	req := validRequest()
	req.Description = "   "

	_, err := f.svc.Create(context.Background(), user, req, photo())
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if f.classifier.calls != 0 || f.store.Len() != 0 {
		t.Fatalf("classifier calls = %d uploads = %d, want 0", f.classifier.calls, f.store.Len())
	}
	if f.stagedFiles(t) != 0 {
		t.Fatal("nothing should have been staged")
	}
}

func TestCreateWithoutPhotoIsValidation(t *testing.T) {
	f := newFixture(t, "YES")
	_, err := f.svc.Create(context.Background(), user, validRequest(), nil)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if f.classifier.calls != 0 {
		t.Fatalf("classifier calls = %d, want 0", f.classifier.calls)
	}
}

func TestCreateAnonymousIsUnauthorized(t *testing.T) {
	f := newFixture(t, "YES")
	_, err := f.svc.Create(context.Background(), authz.Principal{}, validRequest(), photo())
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestTransitionTerminalStateNeverChanges(t *testing.T) {
	f := newFixture(t, "YES")
	ctx := context.Background()
	l, err := f.svc.Create(ctx, admin, validRequest(), photo())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Transition(ctx, l.ID, domain.StateAdopted, moderator); err != nil {
		t.Fatalf("listed -> adopted: %v", err)
	}

	for _, to := range []domain.State{domain.StateAdopted, domain.StateListed, domain.StateTemporaryHome, domain.StatePending} {
		if _, err := f.svc.Transition(ctx, l.ID, to, moderator); !apperr.Is(err, apperr.KindTransition) {
			t.Errorf("adopted -> %s: err = %v, want transition", to, err)
		}
	}

	got, _ := f.repo.GetByID(ctx, l.ID)
	if got.State != domain.StateAdopted {
		t.Fatalf("state = %s, want adopted", got.State)
	}
}

func TestTransitionByUserIsRejected(t *testing.T) {
	f := newFixture(t, "YES")
	ctx := context.Background()
	l, err := f.svc.Create(ctx, user, validRequest(), photo())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Transition(ctx, l.ID, domain.StateListed, user); !apperr.Is(err, apperr.KindTransition) {
		t.Fatalf("err = %v, want transition", err)
	}
	got, _ := f.repo.GetByID(ctx, l.ID)
	if got.State != domain.StatePending {
		t.Fatalf("state = %s, want pending", got.State)
	}
}

func TestTemporaryHomeRoundTrip(t *testing.T) {
	f := newFixture(t, "YES")
	ctx := context.Background()
	l, err := f.svc.Create(ctx, admin, validRequest(), photo())
	if err != nil {
		t.Fatal(err)
	}

	for _, to := range []domain.State{domain.StateTemporaryHome, domain.StateListed, domain.StateTemporaryHome, domain.StateAdopted} {
		if _, err := f.svc.Transition(ctx, l.ID, to, moderator); err != nil {
			t.Fatalf("-> %s: %v", to, err)
		}
	}
}

func TestGetHidesPendingFromStrangers(t *testing.T) {
	f := newFixture(t, "YES")
	ctx := context.Background()
	l, err := f.svc.Create(ctx, user, validRequest(), photo())
	if err != nil {
		t.Fatal(err)
	}

	stranger := authz.Principal{ID: uuid.New(), Role: authz.RoleUser}
	if _, err := f.svc.Get(ctx, l.ID, stranger); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("stranger err = %v, want not found", err)
	}
	if _, err := f.svc.Get(ctx, l.ID, user); err != nil {
		t.Fatalf("owner err = %v", err)
	}
	if _, err := f.svc.Get(ctx, l.ID, moderator); err != nil {
		t.Fatalf("moderator err = %v", err)
	}
}

func TestEnsureAdoptable(t *testing.T) {
	f := newFixture(t, "YES")
	ctx := context.Background()
	pending, _ := f.svc.Create(ctx, user, validRequest(), photo())
	listed, _ := f.svc.Create(ctx, admin, validRequest(), photo())

	if err := f.svc.EnsureAdoptable(ctx, listed.ID); err != nil {
		t.Fatalf("listed should be adoptable: %v", err)
	}
	if err := f.svc.EnsureAdoptable(ctx, pending.ID); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("pending err = %v, want validation", err)
	}
	if err := f.svc.EnsureAdoptable(ctx, uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing err = %v, want not found", err)
	}
}

func TestSummariesSkipsMissing(t *testing.T) {
	f := newFixture(t, "YES")
	ctx := context.Background()
	l, _ := f.svc.Create(ctx, admin, validRequest(), photo())

	got, err := f.svc.Summaries(ctx, []uuid.UUID{l.ID, l.ID, uuid.New()})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[l.ID].Name != "Mishi" {
		t.Fatalf("summaries = %+v", got)
	}
}

func strPtr(s string) *string { return &s }

func TestUpdateEditsFieldsButNeverState(t *testing.T) {
	f := newFixture(t, "YES")
	ctx := context.Background()
	l, err := f.svc.Create(ctx, user, validRequest(), photo())
	if err != nil {
		t.Fatal(err)
	}

	got, err := f.svc.Update(ctx, moderator, l.ID, transport.UpdateListingRequest{
		Description: strPtr("<b>Ya</b> convive con otros gatos"),
		Location:    strPtr("Coyoacán"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Description != "Ya convive con otros gatos" {
		t.Errorf("description = %q", got.Description)
	}
	if got.Location == nil || *got.Location != "Coyoacán" {
		t.Errorf("location = %v", got.Location)
	}
	if got.Name != l.Name || got.AgeLabel != l.AgeLabel {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if got.State != domain.StatePending {
		t.Fatalf("state = %s, want pending", got.State)
	}
}

func TestUpdateRejections(t *testing.T) {
	f := newFixture(t, "YES")
	ctx := context.Background()
	l, err := f.svc.Create(ctx, user, validRequest(), photo())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		actor authz.Principal
		id    uuid.UUID
		req   transport.UpdateListingRequest
		kind  apperr.Kind
	}{
		{"anonymous", authz.Principal{}, l.ID, transport.UpdateListingRequest{Name: strPtr("Tom")}, apperr.KindUnauthorized},
		{"submitter is not staff", user, l.ID, transport.UpdateListingRequest{Name: strPtr("Tom")}, apperr.KindForbidden},
		{"empty patch", moderator, l.ID, transport.UpdateListingRequest{}, apperr.KindValidation},
		{"blank name", moderator, l.ID, transport.UpdateListingRequest{Name: strPtr("  ")}, apperr.KindValidation},
		{"missing listing", moderator, uuid.New(), transport.UpdateListingRequest{Name: strPtr("Tom")}, apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Update(ctx, tt.actor, tt.id, tt.req); !apperr.Is(err, tt.kind) {
				t.Fatalf("err = %v, want %s", err, tt.kind)
			}
		})
	}

	got, _ := f.repo.GetByID(ctx, l.ID)
	if got.Name != "Mishi" {
		t.Fatalf("name = %q, want unchanged", got.Name)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t, "YES")
	ctx := context.Background()
	l, err := f.svc.Create(ctx, admin, validRequest(), photo())
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Delete(ctx, user, l.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("user: err = %v, want forbidden", err)
	}
	if err := f.svc.Delete(ctx, moderator, l.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.repo.GetByID(ctx, l.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("after delete: err = %v, want not found", err)
	}
	if err := f.svc.Delete(ctx, moderator, l.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("second delete: err = %v, want not found", err)
	}
}

func TestDeleteKeepsListingWithRequests(t *testing.T) {
	f := newFixture(t, "YES")
	ctx := context.Background()
	l, err := f.svc.Create(ctx, admin, validRequest(), photo())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.repo.IncrementRequestCount(ctx, l.ID); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Delete(ctx, admin, l.ID); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if _, err := f.repo.GetByID(ctx, l.ID); err != nil {
		t.Fatalf("listing should remain: %v", err)
	}
}

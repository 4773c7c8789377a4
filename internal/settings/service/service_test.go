package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"katze_backend/internal/adapters/storage"
	"katze_backend/internal/authz"
	"katze_backend/internal/intake"
	"katze_backend/internal/settings/repository"
	"katze_backend/internal/settings/transport"
	"katze_backend/platform/apperr"
	"katze_backend/platform/logger"
	"katze_backend/platform/validator"

	"github.com/google/uuid"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

var (
	admin     = authz.Principal{ID: uuid.New(), Role: authz.RoleAdmin}
	moderator = authz.Principal{ID: uuid.New(), Role: authz.RoleModerator}
)

type failingUploader struct{}

func (failingUploader) UploadBytes(context.Context, string, string, string, string, []byte) (string, error) {
	return "", errors.New("bucket missing")
}

func newService(t *testing.T, uploader BytesUploader) (*Service, *storage.MemoryService) {
	t.Helper()
	store := storage.NewMemoryService()
	if uploader == nil {
		uploader = store
	}
	pipeline := intake.New(intake.NewStager(t.TempDir(), 1<<20), nil, store, logger.NewNop())
	return New(repository.NewMemory(), pipeline, uploader, "site-assets", authz.NewPolicy(), validator.New(), logger.NewNop()), store
}

func image() *intake.Upload {
	return &intake.Upload{Filename: "hero.png", Reader: bytes.NewReader(pngBytes)}
}

func TestUpdateRequiresAdmin(t *testing.T) {
	svc, _ := newService(t, nil)
	_, err := svc.Update(context.Background(), moderator, transport.UpdateSettingsRequest{DonationURL: "https://example.com/donar"}, Images{})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestUpdateHeroImageSkipsGate(t *testing.T) {
	svc, store := newService(t, nil)
	got, err := svc.Update(context.Background(), admin, transport.UpdateSettingsRequest{}, Images{Hero: image()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HeroImageURL == nil || !strings.HasPrefix(*got.HeroImageURL, "memory://site-assets/site/") {
		t.Fatalf("hero = %v", got.HeroImageURL)
	}
	if got.DonationQRURL != nil {
		t.Fatalf("qr = %v, want nil", *got.DonationQRURL)
	}
	if store.Len() != 1 {
		t.Fatalf("objects = %d, want 1", store.Len())
	}
}

func TestUpdateDonationURLGeneratesQR(t *testing.T) {
	svc, store := newService(t, nil)
	got, err := svc.Update(context.Background(), admin, transport.UpdateSettingsRequest{DonationURL: "https://example.com/donar"}, Images{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DonationURL == nil || *got.DonationURL != "https://example.com/donar" {
		t.Fatalf("donation url = %v", got.DonationURL)
	}
	if got.DonationQRURL == nil {
		t.Fatal("expected a generated QR")
	}
	if store.Len() != 1 {
		t.Fatalf("objects = %d, want 1", store.Len())
	}

	again, err := svc.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if again.UpdatedBy == nil || *again.UpdatedBy != admin.ID {
		t.Fatalf("updated by = %v", again.UpdatedBy)
	}
}

func TestUpdateUploadedQRWinsOverGenerated(t *testing.T) {
	svc, store := newService(t, failingUploader{})
	got, err := svc.Update(context.Background(), admin, transport.UpdateSettingsRequest{DonationURL: "https://example.com/donar"}, Images{QR: image()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DonationQRURL == nil || store.Len() != 1 {
		t.Fatalf("qr = %v objects = %d", got.DonationQRURL, store.Len())
	}
}

func TestUpdateQRUploadFailureIsStorage(t *testing.T) {
	svc, _ := newService(t, failingUploader{})
	_, err := svc.Update(context.Background(), admin, transport.UpdateSettingsRequest{DonationURL: "https://example.com/donar"}, Images{})
	if !apperr.Is(err, apperr.KindStorage) {
		t.Fatalf("err = %v, want storage", err)
	}
}

func TestUpdateValidation(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	if _, err := svc.Update(ctx, admin, transport.UpdateSettingsRequest{}, Images{}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("empty update: err = %v, want validation", err)
	}
	if _, err := svc.Update(ctx, admin, transport.UpdateSettingsRequest{DonationURL: "not a url"}, Images{}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("bad url: err = %v, want validation", err)
	}
}

package service

import (
	"context"
	"fmt"
	"strings"

	"katze_backend/internal/authz"
	"katze_backend/internal/intake"
	"katze_backend/internal/settings/domain"
	"katze_backend/internal/settings/repository"
	"katze_backend/internal/settings/transport"
	"katze_backend/platform/apperr"
	"katze_backend/platform/logger"
	"katze_backend/platform/validator"

	"github.com/skip2/go-qrcode"
)

const (
	qrSize        = 512
	qrContentType = "image/png"
	assetsFolder  = "site"
)

// Pipeline runs image intake around persistence.
type Pipeline interface {
	Run(ctx context.Context, upload *intake.Upload, opts intake.Options, persist intake.PersistFunc) error
}

// BytesUploader stores generated files.
type BytesUploader interface {
	UploadBytes(ctx context.Context, bucket, folder, fileName, contentType string, data []byte) (string, error)
}

// Images are the optional file parts of an update.
type Images struct {
	Hero *intake.Upload
	QR   *intake.Upload
}

// Service manages the public site settings.
type Service struct {
	repo     repository.Repository
	pipeline Pipeline
	uploader BytesUploader
	bucket   string
	can      authz.Capability
	val      *validator.Validator
	log      *logger.Logger
}

// New creates a settings service.
func New(repo repository.Repository, pipeline Pipeline, uploader BytesUploader, bucket string, can authz.Capability, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{repo: repo, pipeline: pipeline, uploader: uploader, bucket: bucket, can: can, val: val, log: log}
}

// Get returns the current settings.
func (s *Service) Get(ctx context.Context) (domain.Settings, error) {
	return s.repo.Get(ctx)
}

// Update replaces the hero image, the donation QR or both. A donation URL
// without a QR image generates the QR code.
func (s *Service) Update(ctx context.Context, actor authz.Principal, req transport.UpdateSettingsRequest, images Images) (domain.Settings, error) {
	if actor.Anonymous() {
		return domain.Settings{}, apperr.Unauthorized("login required")
	}
	if !s.can.Can(authz.ActionManageSettings, authz.Subject{Actor: actor}) {
		return domain.Settings{}, apperr.Forbidden("only admins can change site settings")
	}
	if err := s.val.Struct(req); err != nil {
		return domain.Settings{}, apperr.Validation("validation failed").WithDetails(validator.FieldErrors(err))
	}

	patch := domain.Patch{UpdatedBy: actor.ID}
	donationURL := strings.TrimSpace(req.DonationURL)
	if donationURL != "" {
		patch.DonationURL = &donationURL
	}

	if images.Hero != nil {
		url, err := s.stage(ctx, images.Hero)
		if err != nil {
			return domain.Settings{}, err
		}
		patch.HeroImageURL = &url
	}

	switch {
	case images.QR != nil:
		url, err := s.stage(ctx, images.QR)
		if err != nil {
			return domain.Settings{}, err
		}
		patch.DonationQRURL = &url
	case donationURL != "":
		url, err := s.generateQR(ctx, donationURL)
		if err != nil {
			return domain.Settings{}, err
		}
		patch.DonationQRURL = &url
	}

	if patch.Empty() {
		return domain.Settings{}, apperr.Validation("nothing to update")
	}

	updated, err := s.repo.Update(ctx, patch)
	if err != nil {
		return domain.Settings{}, err
	}
	s.log.Info("site settings updated", "updated_by", actor.ID)
	return updated, nil
}

func (s *Service) stage(ctx context.Context, upload *intake.Upload) (string, error) {
	var stored string
	err := s.pipeline.Run(ctx, upload, intake.Options{Bucket: s.bucket, Folder: assetsFolder}, func(_ context.Context, url string) error {
		stored = url
		return nil
	})
	return stored, err
}

func (s *Service) generateQR(ctx context.Context, content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, qrSize)
	if err != nil {
		return "", apperr.Validation("donation URL cannot be encoded as a QR code")
	}
	url, err := s.uploader.UploadBytes(ctx, s.bucket, assetsFolder, "donation-qr.png", qrContentType, png)
	if err != nil {
		return "", apperr.Storage("QR upload failed", fmt.Errorf("upload donation qr: %w", err))
	}
	return url, nil
}

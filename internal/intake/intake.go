// Package intake stages, gates and uploads submission images.
package intake

import (
	"context"
	"errors"
	"io"
	"net/http"

	"katze_backend/internal/gate"
	"katze_backend/platform/apperr"
	"katze_backend/platform/logger"
)

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// Gate classifies staged images.
type Gate interface {
	Evaluate(ctx context.Context, imagePath string) (gate.Verdict, error)
}

// Uploader stores a staged file and returns its durable URL.
type Uploader interface {
	UploadLocalFile(ctx context.Context, bucket, folder, localPath, contentType string) (string, error)
}

// Options controls one intake run.
type Options struct {
	// Gated runs the image classification gate before uploading.
	Gated  bool
	Bucket string
	Folder string
}

// PersistFunc stores the entity once the image has a durable URL.
type PersistFunc func(ctx context.Context, imageURL string) error

// Pipeline orchestrates staging, gating and upload around a persist callback.
type Pipeline struct {
	stager   *Stager
	gate     Gate
	uploader Uploader
	log      *logger.Logger
}

// New creates a Pipeline. gate may be nil when no classifier is configured;
// gated runs then fail with a service-unavailable error.
func New(stager *Stager, g Gate, uploader Uploader, log *logger.Logger) *Pipeline {
	return &Pipeline{stager: stager, gate: g, uploader: uploader, log: log}
}

// Run stages the upload, optionally gates it, uploads it and calls persist with
// the durable URL. The staged file is removed on every exit path.
func (p *Pipeline) Run(ctx context.Context, upload *Upload, opts Options, persist PersistFunc) error {
	if upload == nil || upload.Reader == nil {
		return apperr.Validation("image is required")
	}

	staged, err := p.stager.Stage(upload)
	if err != nil {
		return err
	}
	defer p.release(staged)

	if opts.Gated {
		if err := p.check(ctx, staged.Path); err != nil {
			return err
		}
	}

	url, err := p.uploader.UploadLocalFile(ctx, opts.Bucket, opts.Folder, staged.Path, staged.ContentType)
	if err != nil {
		return apperr.Storage("image upload failed", err)
	}

	return persist(ctx, url)
}

// Check stages the upload and runs only the gate. Nothing is uploaded or persisted.
func (p *Pipeline) Check(ctx context.Context, upload *Upload) (gate.Verdict, error) {
	if upload == nil || upload.Reader == nil {
		return gate.VerdictNotCat, apperr.Validation("image is required")
	}

	staged, err := p.stager.Stage(upload)
	if err != nil {
		return gate.VerdictNotCat, err
	}
	defer p.release(staged)

	if p.gate == nil {
		return gate.VerdictNotCat, apperr.ServiceUnavailable("image classification is not configured", nil)
	}
	return p.gate.Evaluate(ctx, staged.Path)
}

func (p *Pipeline) check(ctx context.Context, path string) error {
	if p.gate == nil {
		return apperr.ServiceUnavailable("image classification is not configured", nil)
	}

	verdict, err := p.gate.Evaluate(ctx, path)
	if err != nil {
		return err
	}
	switch verdict {
	case gate.VerdictCat:
		return nil
	case gate.VerdictExhausted:
		return apperr.ServiceUnavailable("image classification is busy, please try again", nil)
	default:
		return apperr.ContentRejected("the image does not look like a real cat photo")
	}
}

func (p *Pipeline) release(staged *StagedFile) {
	if err := staged.Release(); err != nil && p.log != nil {
		p.log.Warn("failed to remove staged file", "path", staged.Path, "error", err)
	}
}

// FromForm opens the named multipart file part as an Upload. A missing part or
// a non-multipart body yields a nil Upload so the pipeline reports the missing
// image itself.
func FromForm(r *http.Request, field string) (*Upload, func(), error) {
	f, fh, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, apperr.Validation("invalid multipart form")
	}
	return &Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Reader:      f,
	}, func() { _ = f.Close() }, nil
}

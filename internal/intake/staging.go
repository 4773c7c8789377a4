package intake

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"katze_backend/internal/adapters/storage"
	"katze_backend/platform/apperr"
)

// StagedFile is an upload copied to local transient storage.
type StagedFile struct {
	Path        string
	ContentType string
	Size        int64

	once sync.Once
	err  error
}

// Release deletes the staged file. It is safe to call more than once.
func (f *StagedFile) Release() error {
	f.once.Do(func() {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.err = err
		}
	})
	return f.err
}

// Stager copies uploads into a local directory.
type Stager struct {
	dir     string
	maxSize int64
}

// NewStager creates a Stager writing into dir. maxSize <= 0 disables the size limit.
func NewStager(dir string, maxSize int64) *Stager {
	return &Stager{dir: dir, maxSize: maxSize}
}

// Stage copies the upload to disk and sniffs its content type.
// Uploads that are empty, too large or not an accepted image fail with a validation error
// and leave nothing behind.
func (s *Stager) Stage(u *Upload) (*StagedFile, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	f, err := os.CreateTemp(s.dir, "intake-*"+storage.ExtensionFor(u.ContentType))
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}
	staged := &StagedFile{Path: f.Name()}

	src := u.Reader
	if s.maxSize > 0 {
		src = io.LimitReader(u.Reader, s.maxSize+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = staged.Release()
		return nil, fmt.Errorf("write staged file: %w", err)
	}
	staged.Size = n

	if err := storage.ValidateFileSize(n, s.maxSize); err != nil {
		_ = staged.Release()
		return nil, apperr.Validation(err.Error())
	}

	contentType, err := sniff(staged.Path)
	if err != nil {
		_ = staged.Release()
		return nil, fmt.Errorf("sniff staged file: %w", err)
	}
	if err := storage.ValidateContentType(contentType); err != nil {
		_ = staged.Release()
		return nil, apperr.Validation("image must be a JPEG, PNG, GIF or WebP file")
	}
	staged.ContentType = contentType

	return staged, nil
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

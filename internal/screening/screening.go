// Package screening lets clients pre-check a photo against the image gate
// before filling in a listing form. Nothing is uploaded or persisted.
package screening

import (
	"context"

	"katze_backend/internal/gate"
	apphttp "katze_backend/internal/http"
	"katze_backend/internal/intake"
	"katze_backend/platform/apperr"
	"katze_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const (
	msgApproved = "The photo shows a cat."
	msgRejected = "The photo does not look like a real cat photo."
)

// Checker stages an upload and runs only the gate.
type Checker interface {
	Check(ctx context.Context, upload *intake.Upload) (gate.Verdict, error)
}

// Result is the answer returned to the client.
type Result struct {
	Approved bool   `json:"approved"`
	Message  string `json:"message"`
}

// Service turns gate verdicts into client answers.
type Service struct {
	checker Checker
}

func NewService(checker Checker) *Service {
	return &Service{checker: checker}
}

// Check classifies the upload. An exhausted gate is reported as unavailable so
// the client can retry instead of being told the photo is not a cat.
func (s *Service) Check(ctx context.Context, upload *intake.Upload) (Result, error) {
	verdict, err := s.checker.Check(ctx, upload)
	if err != nil {
		return Result{}, err
	}
	switch verdict {
	case gate.VerdictCat:
		return Result{Approved: true, Message: msgApproved}, nil
	case gate.VerdictExhausted:
		return Result{}, apperr.ServiceUnavailable("image classification is busy, please try again", nil)
	default:
		return Result{Approved: false, Message: msgRejected}, nil
	}
}

// Module exposes POST /gate/check.
type Module struct {
	svc *Service
}

func NewModule(checker Checker) *Module {
	return &Module{svc: NewService(checker)}
}

func (m *Module) Name() string {
	return "screening"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/gate/check", ctx.SubmissionRateLimiter.RateLimit(), m.check)
}

func (m *Module) check(c *gin.Context) {
	upload, closeUpload, err := intake.FromForm(c.Request, "photo")
	if httpkit.HandleError(c, err) {
		return
	}
	defer closeUpload()

	result, err := m.svc.Check(c.Request.Context(), upload)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

var _ apphttp.Module = (*Module)(nil)

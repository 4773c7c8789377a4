package screening

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"katze_backend/internal/gate"
	apphttp "katze_backend/internal/http"
	"katze_backend/internal/intake"
	"katze_backend/platform/apperr"
	"katze_backend/platform/httpkit"
	"katze_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type fakeChecker struct {
	verdict gate.Verdict
	err     error
	calls   int
}

func (f *fakeChecker) Check(_ context.Context, upload *intake.Upload) (gate.Verdict, error) {
	f.calls++
	if upload == nil {
		return gate.VerdictNotCat, apperr.Validation("image is required")
	}
	return f.verdict, f.err
}

func TestServiceCheck(t *testing.T) {
	upload := &intake.Upload{Reader: bytes.NewReader([]byte("x"))}
	tests := []struct {
		name     string
		checker  *fakeChecker
		approved bool
		kind     apperr.Kind
	}{
		{"cat", &fakeChecker{verdict: gate.VerdictCat}, true, apperr.KindUnknown},
		{"not a cat", &fakeChecker{verdict: gate.VerdictNotCat}, false, apperr.KindUnknown},
		{"exhausted", &fakeChecker{verdict: gate.VerdictExhausted}, false, apperr.KindServiceUnavailable},
		{"classifier down", &fakeChecker{err: apperr.ServiceUnavailable("down", errors.New("500"))}, false, apperr.KindServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewService(tt.checker).Check(context.Background(), upload)
			if tt.kind != apperr.KindUnknown {
				if !apperr.Is(err, tt.kind) {
					t.Fatalf("err = %v, want %s", err, tt.kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Approved != tt.approved || res.Message == "" {
				t.Fatalf("result = %+v", res)
			}
		})
	}
}

func TestCheckRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	checker := &fakeChecker{verdict: gate.VerdictCat}
	NewModule(checker).RegisterRoutes(&apphttp.RouterContext{
		Engine:                engine,
		V1:                    engine.Group("/api/v1"),
		SubmissionRateLimiter: httpkit.NewSubmissionRateLimiter(logger.NewNop()),
	})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("photo", "cat.png")
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/gate/check", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var res Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Approved || checker.calls != 1 {
		t.Fatalf("result = %+v calls = %d", res, checker.calls)
	}
}

func TestCheckRouteWithoutPhoto(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewModule(&fakeChecker{}).RegisterRoutes(&apphttp.RouterContext{
		Engine:                engine,
		V1:                    engine.Group("/api/v1"),
		SubmissionRateLimiter: httpkit.NewSubmissionRateLimiter(logger.NewNop()),
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/gate/check", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

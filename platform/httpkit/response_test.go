package httpkit

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"katze_backend/platform/apperr"
	"katze_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func loggedEngine(buf *bytes.Buffer, err error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := &logger.Logger{Logger: slog.New(slog.NewJSONHandler(buf, nil))}
	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/x", func(c *gin.Context) { HandleError(c, err) })
	return r
}

func TestRequestLoggerRecordsServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		want    string
		notWant string
	}{
		{"persistence", apperr.Persistence("failed to save listing", errors.New("conn reset")), http.StatusInternalServerError, `"msg":"database_error"`, `"msg":"http_error"`},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, `"msg":"http_error"`, `"msg":"database_error"`},
		{"storage", apperr.Storage("failed to store photo", errors.New("timeout")), http.StatusBadGateway, `"msg":"http_error"`, `"msg":"database_error"`},
		{"client error", apperr.Validation("bad input"), http.StatusBadRequest, `"msg":"http_request"`, `"msg":"http_error"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := httptest.NewRecorder()
			loggedEngine(&buf, tt.err).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			out := buf.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("log missing %s:\n%s", tt.want, out)
			}
			if strings.Contains(out, tt.notWant) {
				t.Errorf("log unexpectedly has %s:\n%s", tt.notWant, out)
			}
		})
	}
}

func TestHandleErrorHidesUntypedMessage(t *testing.T) {
	var buf bytes.Buffer
	w := httptest.NewRecorder()
	loggedEngine(&buf, errors.New("pq: secret detail")).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if strings.Contains(w.Body.String(), "secret detail") {
		t.Fatalf("body leaks error: %s", w.Body.String())
	}
	if !strings.Contains(buf.String(), "secret detail") {
		t.Fatalf("log should keep the error: %s", buf.String())
	}
}

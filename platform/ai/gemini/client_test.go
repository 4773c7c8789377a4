package gemini

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"
)

func TestIsOverloaded(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "sentinel", err: fmt.Errorf("call: %w", ErrOverloaded), want: true},
		{name: "rate limited", err: genai.APIError{Code: 429}, want: true},
		{name: "unavailable", err: genai.APIError{Code: 503}, want: true},
		{name: "status only", err: genai.APIError{Status: "RESOURCE_EXHAUSTED"}, want: true},
		{name: "bad request", err: genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOverloaded(tt.err); got != tt.want {
				t.Errorf("IsOverloaded() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMimeTypeFromExtension(t *testing.T) {
	if got := mimeType("/tmp/x.PNG", nil); got != "image/png" {
		t.Fatalf("mimeType() = %q", got)
	}
}

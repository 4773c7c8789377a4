// Package gemini provides a vision classifier backed by the Gemini API.
// This is part of the platform layer and contains no business logic.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"katze_backend/platform/config"

	"google.golang.org/genai"
)

// ErrOverloaded marks a transient upstream failure (rate limited or unavailable).
var ErrOverloaded = errors.New("gemini: model overloaded")

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("gemini: classifier not configured")

// Client classifies images with a single multimodal prompt.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini client. It returns ErrDisabled when no API key is set.
func NewClient(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	if !cfg.IsGeminiEnabled() {
		return nil, ErrDisabled
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.GetGeminiModel()
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &Client{client: client, model: model}, nil
}

// Classify sends the prompt together with the image at imagePath and returns the
// model's raw text answer. Transient failures wrap ErrOverloaded.
func (c *Client) Classify(ctx context.Context, imagePath, prompt string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read staged image: %w", err)
	}

	content := &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromText(prompt),
			{InlineData: &genai.Blob{MIMEType: mimeType(imagePath, data), Data: data}},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{content}, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		if IsOverloaded(err) {
			return "", fmt.Errorf("%w: %w", ErrOverloaded, err)
		}
		return "", fmt.Errorf("generate content: %w", err)
	}

	return resp.Text(), nil
}

// IsOverloaded reports whether err is a transient Gemini failure worth retrying.
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrOverloaded) {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return overloadedStatus(apiErr.Code, apiErr.Status)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return overloadedStatus(apiErrPtr.Code, apiErrPtr.Status)
	}
	return false
}

func overloadedStatus(code int, status string) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}
	switch strings.ToUpper(status) {
	case "UNAVAILABLE", "RESOURCE_EXHAUSTED":
		return true
	}
	return false
}

func mimeType(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return http.DetectContentType(data)
}

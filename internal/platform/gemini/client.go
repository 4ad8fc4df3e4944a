// Package gemini implements the REST client for the Gemini generateContent
// API, used as the external reasoning collaborator for candidate
// verification. The client grounds generation with the Google Search tool and
// requests a JSON response; interpreting that JSON against the verification
// schema is the caller's responsibility.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// ClientConfig holds connection parameters for the Gemini client.
type ClientConfig struct {
	BaseURL string // defaults to the public API host
	APIKey  string
	Model   string // e.g. "gemini-3-pro-preview"
	Timeout time.Duration
}

// Client is the REST client for the Gemini generateContent API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a new Gemini client from the given configuration.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// GenerateJSON sends the prompt to the model with search grounding enabled
// and returns the raw text of the first candidate part. The text is expected
// to be JSON but is returned unvalidated.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
		Tools: []tool{
			{GoogleSearch: &googleSearch{}},
		},
		GenerationConfig: generationConfig{
			Temperature:      0.2,
			ResponseMimeType: "application/json",
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("gemini: %w: %s", domain.ErrRateLimited, truncate(body, 256))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini: HTTP %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}

	for _, cand := range out.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
	}

	return "", fmt.Errorf("gemini: response contained no text parts")
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Package translator calls the translation backend with batched text
// segments and returns translations in input order.
package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vidscribe/vidscribe/internal/config"
)

// Client calls the translation backend
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// New creates a new translation client. A missing API key is a configuration
// error and is rejected here.
func New(cfg config.TranslatorConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("translator API key is not set")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	return &Client{
		apiKey:   cfg.APIKey,
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type translateRequest struct {
	Q      []string `json:"q"`
	Target string   `json:"target"`
	Format string   `json:"format"`
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// TranslateTexts translates all segments in one batched call. The result has
// the same length and order as texts; segments the backend omitted come back
// as empty strings. Backend failures are returned as errors and the caller
// decides how to record them.
func (c *Client) TranslateTexts(ctx context.Context, texts []string, target string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	payload, err := json.Marshal(translateRequest{
		Q:      texts,
		Target: target,
		Format: "text",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal translate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s?key=%s", c.endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("translate failed: %d - %s", resp.StatusCode, string(body))
	}

	var result translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode translate response: %w", err)
	}

	// Pad to input length so callers can pair by index without bounds checks
	translated := make([]string, len(texts))
	for i, tr := range result.Data.Translations {
		if i >= len(translated) {
			break
		}
		translated[i] = tr.TranslatedText
	}

	return translated, nil
}

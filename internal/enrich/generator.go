package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxImageBytes = 10 << 20

type ImageRequest struct {
	Score       int64  `json:"score"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	PfpURL      string `json:"pfpUrl,omitempty"`
}

type ImageGenerator interface {
	Generate(ctx context.Context, req ImageRequest) (data []byte, contentType string, err error)
}

type httpGenerator struct {
	url    string
	token  string
	client *http.Client
}

// NewHTTPGenerator calls an image service that answers a JSON POST with the
// rendered image bytes.
func NewHTTPGenerator(url, token string, timeout time.Duration) ImageGenerator {
	return &httpGenerator{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

func (g *httpGenerator) Generate(ctx context.Context, req ImageRequest) ([]byte, string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return nil, "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("generator request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("generator returned status %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("generator returned content type %q", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read generator response: %w", err)
	}
	if len(data) == 0 || len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("generator returned %d bytes", len(data))
	}
	return data, contentType, nil
}

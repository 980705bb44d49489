package provider

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// GeminiClient calls the Google generative language API directly.
type GeminiClient struct {
	client  *resty.Client
	baseURL string
}

func NewGemini() *GeminiClient {
	return &GeminiClient{client: resty.New()}
}

// SetBaseURL points the client at a different API host. Tests use this to
// talk to a local stand-in.
func (g *GeminiClient) SetBaseURL(base string) {
	g.baseURL = base
}

func (g *GeminiClient) endpoint(model string) (string, error) {
	if g.baseURL != "" {
		if _, err := Endpoint(model); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s/%s:generateContent", g.baseURL, model), nil
	}
	return Endpoint(model)
}

// Generate posts a generateContent request for the exact model given.
func (g *GeminiClient) Generate(ctx context.Context, apiKey, model string, req *GoogleRequest) (*GoogleResponse, error) {
	endpoint, err := g.endpoint(model)
	if err != nil {
		return nil, err
	}

	var result GoogleResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		Post(endpoint)
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, &UpstreamError{
			Provider:   ProviderGoogle,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	return &result, nil
}

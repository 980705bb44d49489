package provider

import (
	"context"

	"github.com/go-resty/resty/v2"
)

const openRouterBase = "https://openrouter.ai/api/v1"

// OpenRouterClient speaks the OpenAI-style chat completions API that
// OpenRouter exposes in front of many upstream vendors.
type OpenRouterClient struct {
	client  *resty.Client
	baseURL string
	referer string
	title   string
}

func NewOpenRouter(referer, title string) *OpenRouterClient {
	return &OpenRouterClient{
		client:  resty.New(),
		baseURL: openRouterBase,
		referer: referer,
		title:   title,
	}
}

func (o *OpenRouterClient) SetBaseURL(base string) {
	o.baseURL = base
}

// ChatCompletion posts a chat request. OpenRouter attributes traffic via the
// HTTP-Referer and X-Title headers, so both ride along on every call.
func (o *OpenRouterClient) ChatCompletion(ctx context.Context, apiKey string, req *ChatRequest) (*ChatResponse, error) {
	var result ChatResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", o.referer).
		SetHeader("X-Title", o.title).
		SetBody(req).
		SetResult(&result).
		Post(o.baseURL + "/chat/completions")
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, &UpstreamError{
			Provider:   ProviderOpenRouter,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	return &result, nil
}

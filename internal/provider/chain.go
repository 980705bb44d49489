package provider

import (
	"context"
	"fmt"
	"log"
)

// Chain tries Gemini first and reroutes through OpenRouter when the direct
// call fails for any reason, bad credentials included. The failover leg is
// skipped when no OpenRouter key is configured.
type Chain struct {
	Gemini        *GeminiClient
	OpenRouter    *OpenRouterClient
	OpenRouterKey string
}

// FallbackConfigured reports whether the OpenRouter leg can run.
func (c *Chain) FallbackConfigured() bool {
	return c.OpenRouter != nil && c.OpenRouterKey != ""
}

// Generate runs the request through the chain. The Result records which
// provider answered and on which attempt, so responses stay auditable.
func (c *Chain) Generate(ctx context.Context, geminiKey, model string, req *GoogleRequest) (*Result, error) {
	if _, err := Endpoint(model); err != nil {
		return nil, err
	}

	resp, err := c.Gemini.Generate(ctx, geminiKey, model, req)
	if err == nil {
		return &Result{Data: resp, Provider: ProviderGoogle, Model: model, Attempt: 1}, nil
	}

	if !c.FallbackConfigured() {
		return nil, err
	}
	log.Printf("google call for %s failed, trying openrouter: %v", model, err)

	chatResp, orErr := c.OpenRouter.ChatCompletion(ctx, c.OpenRouterKey, ToChatRequest(model, req))
	if orErr != nil {
		return nil, fmt.Errorf("all providers failed: google: %v; openrouter: %w", err, orErr)
	}

	return &Result{
		Data:     ToGoogleResponse(chatResp),
		Provider: ProviderOpenRouter,
		Model:    OpenRouterModel(model),
		Attempt:  2,
	}, nil
}

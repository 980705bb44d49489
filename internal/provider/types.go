// Package provider wraps the hosted generation APIs (Google Gemini, with
// OpenRouter as the failover route). Callers speak the Google generateContent
// format regardless of which provider actually served the request.
package provider

import "fmt"

// Google generateContent wire format.

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type Content struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type GenerationConfig struct {
	Temperature        float64  `json:"temperature,omitempty"`
	MaxOutputTokens    int      `json:"maxOutputTokens,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type GoogleRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
	Index        int     `json:"index"`
}

type GoogleResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// OpenAI-style chat completions wire format (OpenRouter).

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Modalities  []string      `json:"modalities,omitempty"`
}

type ChatImage struct {
	Type     string `json:"type"`
	ImageURL struct {
		URL string `json:"url"`
	} `json:"image_url"`
}

type ChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string      `json:"role"`
		Content string      `json:"content"`
		Images  []ChatImage `json:"images,omitempty"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type ChatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
}

// UpstreamError is a non-2xx reply from a provider.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API failed: %d - %s", e.Provider, e.StatusCode, e.Body)
}

// Result is a completed generation, in Google format regardless of route.
type Result struct {
	Data     *GoogleResponse
	Provider string
	Model    string
	Attempt  int
}

const (
	ProviderGoogle     = "google"
	ProviderOpenRouter = "openrouter"
)

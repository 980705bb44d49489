package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToChatRequestText(t *testing.T) {
	req := &GoogleRequest{
		Contents: []Content{
			{Parts: []Part{{Text: "Write a caption"}, {Text: "for a bakery"}}},
		},
		GenerationConfig: GenerationConfig{Temperature: 0.7, MaxOutputTokens: 100},
	}

	out := ToChatRequest("gemini-2.5-flash", req)

	assert.Equal(t, "google/gemini-2.5-flash", out.Model)
	require.Len(t, out.Messages, 1)
	assert.Equal(t, "user", out.Messages[0].Role)
	assert.Equal(t, "Write a caption for a bakery", out.Messages[0].Content)
	assert.Equal(t, 0.7, out.Temperature)
	assert.Equal(t, 100, out.MaxTokens)
	assert.Nil(t, out.Modalities)
}

func TestToChatRequestImageModel(t *testing.T) {
	req := &GoogleRequest{
		Contents: []Content{{Parts: []Part{{Text: "A blue square"}}}},
	}

	out := ToChatRequest("gemini-2.5-flash-image-preview", req)

	assert.Equal(t, "google/gemini-2.5-flash-image-preview", out.Model)
	assert.Equal(t, []string{"image", "text"}, out.Modalities)
}

func TestToChatRequestRoles(t *testing.T) {
	req := &GoogleRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: "hi"}}},
			{Role: "model", Parts: []Part{{Text: "hello"}}},
			{Parts: []Part{{InlineData: &InlineData{MimeType: "image/png", Data: "aa"}}}},
		},
	}

	out := ToChatRequest("gemini-2.5-flash", req)

	// The inline-only content carries no text, so it produces no message.
	require.Len(t, out.Messages, 2)
	assert.Equal(t, "user", out.Messages[0].Role)
	assert.Equal(t, "assistant", out.Messages[1].Role)
}

func TestToGoogleResponseText(t *testing.T) {
	resp := &ChatResponse{}
	resp.Choices = []ChatChoice{{FinishReason: "stop"}}
	resp.Choices[0].Message.Role = "assistant"
	resp.Choices[0].Message.Content = "This is a test response from OpenRouter"

	out := ToGoogleResponse(resp)

	require.Len(t, out.Candidates, 1)
	cand := out.Candidates[0]
	assert.Equal(t, "STOP", cand.FinishReason)
	assert.Equal(t, "model", cand.Content.Role)
	assert.Equal(t, 0, cand.Index)
	require.Len(t, cand.Content.Parts, 1)
	assert.Equal(t, "This is a test response from OpenRouter", cand.Content.Parts[0].Text)
}

func TestToGoogleResponseImages(t *testing.T) {
	img := ChatImage{Type: "image_url"}
	img.ImageURL.URL = "data:image/jpeg;base64,/9j/4AAQ"
	bad := ChatImage{Type: "image_url"}
	bad.ImageURL.URL = "https://example.com/not-inline.jpg"

	resp := &ChatResponse{}
	resp.Choices = []ChatChoice{{FinishReason: "stop"}}
	resp.Choices[0].Message.Content = "here you go"
	resp.Choices[0].Message.Images = []ChatImage{img, bad}

	out := ToGoogleResponse(resp)

	require.Len(t, out.Candidates, 1)
	parts := out.Candidates[0].Content.Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "here you go", parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/jpeg", parts[1].InlineData.MimeType)
	assert.Equal(t, "/9j/4AAQ", parts[1].InlineData.Data)
}

func TestToGoogleResponseEmpty(t *testing.T) {
	out := ToGoogleResponse(&ChatResponse{})
	assert.Empty(t, out.Candidates)
}

func TestGoogleFinishReason(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"stop", "STOP"},
		{"length", "MAX_TOKENS"},
		{"", "STOP"},
		{"content_filter", "CONTENT_FILTER"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, googleFinishReason(tt.in), "reason %q", tt.in)
	}
}

func TestParseDataURL(t *testing.T) {
	mime, data, ok := parseDataURL("data:image/png;base64,iVBORw0KGgo=")
	require.True(t, ok)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, "iVBORw0KGgo=", data)

	_, _, ok = parseDataURL("https://example.com/a.png")
	assert.False(t, ok)

	_, _, ok = parseDataURL("data:image/png")
	assert.False(t, ok)
}

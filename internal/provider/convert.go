package provider

import (
	"fmt"
	"strings"
)

// ToChatRequest translates a Google generateContent payload into the chat
// completions form OpenRouter accepts. Text parts of a content are joined
// into a single message; image models additionally request image output.
func ToChatRequest(model string, req *GoogleRequest) *ChatRequest {
	out := &ChatRequest{
		Model:       OpenRouterModel(model),
		Temperature: req.GenerationConfig.Temperature,
		MaxTokens:   req.GenerationConfig.MaxOutputTokens,
	}
	if IsImageModel(model) {
		out.Modalities = []string{"image", "text"}
	}

	for _, content := range req.Contents {
		role := "user"
		if content.Role == "model" {
			role = "assistant"
		}
		var texts []string
		for _, part := range content.Parts {
			if part.Text != "" {
				texts = append(texts, part.Text)
			}
		}
		if len(texts) == 0 {
			continue
		}
		out.Messages = append(out.Messages, ChatMessage{
			Role:    role,
			Content: strings.Join(texts, " "),
		})
	}

	return out
}

// ToGoogleResponse translates a chat completions reply back into the Google
// candidate shape, so callers never see which provider served the request.
// Inline images arrive as data URLs and are unpacked into inlineData parts.
func ToGoogleResponse(resp *ChatResponse) *GoogleResponse {
	out := &GoogleResponse{}
	if len(resp.Choices) == 0 {
		return out
	}

	choice := resp.Choices[0]
	var parts []Part
	if choice.Message.Content != "" {
		parts = append(parts, Part{Text: choice.Message.Content})
	}
	for _, img := range choice.Message.Images {
		mime, data, ok := parseDataURL(img.ImageURL.URL)
		if !ok {
			continue
		}
		parts = append(parts, Part{InlineData: &InlineData{MimeType: mime, Data: data}})
	}

	out.Candidates = append(out.Candidates, Candidate{
		Content:      Content{Parts: parts, Role: "model"},
		FinishReason: googleFinishReason(choice.FinishReason),
		Index:        choice.Index,
	})
	return out
}

func googleFinishReason(reason string) string {
	switch reason {
	case "stop":
		return "STOP"
	case "length":
		return "MAX_TOKENS"
	case "":
		return "STOP"
	default:
		return strings.ToUpper(reason)
	}
}

// parseDataURL splits a data:<mime>;base64,<data> URL into its mime type and
// payload. Anything else is rejected.
func parseDataURL(url string) (mime, data string, ok bool) {
	const prefix = "data:"
	if !strings.HasPrefix(url, prefix) {
		return "", "", false
	}
	rest := url[len(prefix):]
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}
	mime = strings.TrimSuffix(meta, ";base64")
	if mime == "" || mime == meta {
		return "", "", false
	}
	return mime, payload, true
}

// DataURL packs an inline image into the data URL form browsers and the chat
// APIs understand.
func DataURL(mime, data string) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, data)
}

package provider

import (
	"fmt"
	"sort"
	"strings"
)

const generativeLanguageBase = "https://generativelanguage.googleapis.com/v1beta/models"

// allowedModels is the strict allowlist: only these models are ever called,
// so a bad request can't run up costs on an arbitrary model.
var allowedModels = map[string]string{
	"gemini-2.5-flash-image-preview": generativeLanguageBase + "/gemini-2.5-flash-image-preview:generateContent",
	"gemini-2.5-flash":               generativeLanguageBase + "/gemini-2.5-flash:generateContent",
	"gemini-2.5-flash-lite":          generativeLanguageBase + "/gemini-2.5-flash-lite:generateContent",
	"gemini-1.5-pro":                 generativeLanguageBase + "/gemini-1.5-pro:generateContent",
}

// AllowedModels returns the allowlist, sorted for stable output.
func AllowedModels() []string {
	names := make([]string, 0, len(allowedModels))
	for name := range allowedModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Endpoint resolves a model name against the allowlist.
func Endpoint(model string) (string, error) {
	endpoint, ok := allowedModels[model]
	if !ok {
		return "", &ModelNotAllowedError{Model: model}
	}
	return endpoint, nil
}

// IsImageModel reports whether model produces images.
func IsImageModel(model string) bool {
	return strings.Contains(model, "image")
}

// OpenRouterModel maps an allowlisted Gemini model onto its OpenRouter name.
func OpenRouterModel(model string) string {
	return "google/" + model
}

// FallbackModels lists the OpenRouter names the failover route can use.
func FallbackModels() []string {
	models := AllowedModels()
	out := make([]string, 0, len(models))
	for _, m := range models {
		out = append(out, OpenRouterModel(m))
	}
	return out
}

// ModelNotAllowedError rejects a model outside the allowlist.
type ModelNotAllowedError struct {
	Model string
}

func (e *ModelNotAllowedError) Error() string {
	return fmt.Sprintf("Model '%s' not allowed. Allowed models: %v", e.Model, AllowedModels())
}

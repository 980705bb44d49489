// Package generation runs prompts through the provider chain on behalf of a
// user, settling quota and credits around the call and recording the outcome
// as a generated_posts row.
package generation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/nevisai/platform/internal/config"
	"github.com/nevisai/platform/internal/credits"
	"github.com/nevisai/platform/internal/metrics"
	"github.com/nevisai/platform/internal/models"
	"github.com/nevisai/platform/internal/provider"
	"github.com/nevisai/platform/internal/quota"
)

const (
	KindText  = "text"
	KindImage = "image"
)

const (
	DefaultRevision   = "1.5"
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "gemini-2.5-flash-image-preview"

	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
)

// ErrKeyNotConfigured means no Gemini key exists for the selected revision.
var ErrKeyNotConfigured = errors.New("API key not configured")

// FailedError wraps a provider chain failure for one generation kind.
type FailedError struct {
	Kind string
	Err  error
}

func (e *FailedError) Error() string {
	kind := "Text"
	if e.Kind == KindImage {
		kind = "Image"
	}
	return fmt.Sprintf("%s generation failed: %v", kind, e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

// CostFor returns the credit price of one generation of the given kind.
func CostFor(kind string) int {
	if kind == KindImage {
		return credits.CostImage
	}
	return credits.CostText
}

// Ledger is the slice of the credits service generation needs.
type Ledger interface {
	EnsureUser(ctx context.Context, userID, email string) (*models.User, error)
	Spend(ctx context.Context, userID string, amount int, reason, reference string) (int, error)
	Refund(ctx context.Context, userID string, amount int, reference string) (int, error)
}

// UsageCounter is the slice of the quota service generation needs.
type UsageCounter interface {
	Usage(ctx context.Context, userID string) (int, error)
	Increment(ctx context.Context, userID string) (int, error)
}

// Chain produces content, routing between providers internally.
type Chain interface {
	Generate(ctx context.Context, geminiKey, model string, req *provider.GoogleRequest) (*provider.Result, error)
}

// Uploader persists generated images and returns their public URL.
type Uploader interface {
	Enabled() bool
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// Store saves finished posts.
type Store interface {
	SavePost(ctx context.Context, post *models.GeneratedPost) error
}

type Service struct {
	cfg     *config.Config
	chain   Chain
	quota   UsageCounter
	ledger  Ledger
	store   Store
	uploads Uploader
}

func NewService(cfg *config.Config, chain Chain, usage UsageCounter, ledger Ledger, store Store, uploads Uploader) *Service {
	return &Service{cfg: cfg, chain: chain, quota: usage, ledger: ledger, store: store, uploads: uploads}
}

// Request is one generation to run, already resolved to concrete values.
type Request struct {
	UserID      string
	Email       string
	Prompt      string
	Model       string
	Revision    string
	MaxTokens   int
	Temperature float64
	Kind        string
	BrandID     *string
}

// Response is the payload handlers return for a finished generation.
type Response struct {
	Success      bool                     `json:"success"`
	Data         *provider.GoogleResponse `json:"data"`
	ModelUsed    string                   `json:"model_used"`
	ProviderUsed string                   `json:"provider_used"`
	Attempt      int                      `json:"attempt"`
	UserCredits  int                      `json:"user_credits"`
	PostID       string                   `json:"post_id"`
}

// Generate runs one request end to end: allowlist, revision key, quota and
// credit settlement, the provider chain, optional image upload, and the post
// row. A provider failure after a credit spend refunds the spend.
func (s *Service) Generate(ctx context.Context, req Request) (*Response, error) {
	if _, err := provider.Endpoint(req.Model); err != nil {
		return nil, err
	}
	key := s.cfg.GeminiKeyForRevision(req.Revision)
	if key == "" {
		return nil, ErrKeyNotConfigured
	}

	user, err := s.ledger.EnsureUser(ctx, req.UserID, req.Email)
	if err != nil {
		return nil, err
	}

	usage, err := s.quota.Usage(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	limit := quota.TierLimit(user.Tier)

	postID := uuid.NewString()
	reference := "post:" + postID
	cost := 0
	balance := user.Credits

	if usage >= limit {
		cost = CostFor(req.Kind)
		balance, err = s.ledger.Spend(ctx, req.UserID, cost, "generation", reference)
		if errors.Is(err, credits.ErrInsufficientCredits) {
			if balance == 0 {
				return nil, &quota.ExceededError{Used: usage, Limit: limit}
			}
			return nil, &credits.InsufficientCreditsError{Balance: balance, Cost: cost}
		}
		if err != nil {
			return nil, err
		}
	}

	result, err := s.chain.Generate(ctx, key, req.Model, buildGoogleRequest(req))
	if err != nil {
		metrics.ObserveGeneration(req.Kind, "none", req.Model, "error")
		if cost > 0 {
			refunded, rerr := s.ledger.Refund(ctx, req.UserID, cost, reference)
			if rerr != nil {
				log.Printf("Refund after failed generation for user %s: %v", req.UserID, rerr)
			} else {
				balance = refunded
			}
		}
		return nil, &FailedError{Kind: req.Kind, Err: err}
	}
	metrics.ObserveGeneration(req.Kind, result.Provider, result.Model, "success")
	if result.Attempt > 1 {
		metrics.ObserveFallback()
	}

	if _, err := s.quota.Increment(ctx, req.UserID); err != nil {
		log.Printf("Quota increment for user %s: %v", req.UserID, err)
	}

	post := &models.GeneratedPost{
		ID:           postID,
		UserID:       req.UserID,
		BrandID:      req.BrandID,
		Kind:         req.Kind,
		Prompt:       req.Prompt,
		Content:      candidateText(result.Data),
		ModelUsed:    result.Model,
		ProviderUsed: result.Provider,
		Revision:     req.Revision,
		CreditsSpent: cost,
	}

	if req.Kind == KindImage && s.uploads != nil && s.uploads.Enabled() {
		if url, ok := s.uploadInlineImage(ctx, req.UserID, postID, result.Data); ok {
			post.ImageURL = &url
		}
	}

	if err := s.store.SavePost(ctx, post); err != nil {
		// The content is already generated and paid for; losing the row is
		// not worth failing the request over.
		log.Printf("Save post %s for user %s: %v", postID, req.UserID, err)
	}

	log.Printf("Generated %s post %s for user %s via %s (attempt %d)",
		req.Kind, postID, req.UserID, result.Provider, result.Attempt)

	return &Response{
		Success:      true,
		Data:         result.Data,
		ModelUsed:    result.Model,
		ProviderUsed: result.Provider,
		Attempt:      result.Attempt,
		UserCredits:  balance,
		PostID:       postID,
	}, nil
}

func (s *Service) uploadInlineImage(ctx context.Context, userID, postID string, data *provider.GoogleResponse) (string, bool) {
	mime, b64, ok := firstInlineImage(data)
	if !ok {
		return "", false
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		log.Printf("Decode inline image for post %s: %v", postID, err)
		return "", false
	}
	path := fmt.Sprintf("users/%s/%s%s", userID, postID, extensionFor(mime))
	url, err := s.uploads.Upload(ctx, path, raw, mime)
	if err != nil {
		log.Printf("Upload image for post %s: %v", postID, err)
		return "", false
	}
	return url, true
}

func buildGoogleRequest(req Request) *provider.GoogleRequest {
	cfg := provider.GenerationConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxTokens,
	}
	if provider.IsImageModel(req.Model) {
		cfg.ResponseModalities = []string{"IMAGE"}
	}
	return &provider.GoogleRequest{
		Contents:         []provider.Content{{Parts: []provider.Part{{Text: req.Prompt}}}},
		GenerationConfig: cfg,
	}
}

// candidateText flattens the text parts of the first candidate, for the post
// row. Inline images are represented by their URL, not here.
func candidateText(resp *provider.GoogleResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	var texts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}

func firstInlineImage(resp *provider.GoogleResponse) (mime, data string, ok bool) {
	if resp == nil {
		return "", "", false
	}
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return part.InlineData.MimeType, part.InlineData.Data, true
			}
		}
	}
	return "", "", false
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

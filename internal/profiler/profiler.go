// Package profiler turns scraped website content into a structured business
// profile. A ladder of hosted models is tried first; a keyword classifier
// answers when none of them can.
package profiler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/nevisai/platform/internal/credits"
	"github.com/nevisai/platform/internal/metrics"
	"github.com/nevisai/platform/internal/models"
	"github.com/nevisai/platform/internal/provider"
	"github.com/nevisai/platform/internal/quota"
	"github.com/nevisai/platform/internal/scraper"
)

// Profile is the extracted business description. Field names follow the
// camelCase contract the web client consumes.
type Profile struct {
	BusinessName     string   `json:"businessName"`
	BusinessType     string   `json:"businessType"`
	Location         string   `json:"location"`
	TargetAudience   string   `json:"targetAudience"`
	Services         string   `json:"services"`
	ValueProposition string   `json:"valueProposition"`
	CallsToAction    []string `json:"callsToAction"`
}

// AnalysisModels is the ladder order: cheapest capable model first.
func AnalysisModels() []string {
	return []string{
		"anthropic/claude-3-haiku",
		"openai/gpt-4o-mini",
		"openai/gpt-3.5-turbo",
	}
}

const (
	ProviderHeuristic = "local"
	HeuristicModel    = "keyword-heuristic"

	defaultTemperature = 0.3
	defaultMaxTokens   = 4096
)

// ErrNoContent means the request named neither a URL nor inline content.
var ErrNoContent = errors.New("website_url or website_content is required")

// ScrapeError wraps a failed page fetch so handlers can answer 502.
type ScrapeError struct {
	Err error
}

func (e *ScrapeError) Error() string { return fmt.Sprintf("scrape for analysis: %v", e.Err) }

func (e *ScrapeError) Unwrap() error { return e.Err }

// ChatCaller is the slice of the OpenRouter client the ladder needs.
type ChatCaller interface {
	ChatCompletion(ctx context.Context, apiKey string, req *provider.ChatRequest) (*provider.ChatResponse, error)
}

// ContentSource supplies page content when the caller only gave a URL.
type ContentSource interface {
	Scrape(ctx context.Context, url string) (*scraper.Result, error)
}

// Ledger is the slice of the credits service the profiler needs.
type Ledger interface {
	EnsureUser(ctx context.Context, userID, email string) (*models.User, error)
	Spend(ctx context.Context, userID string, amount int, reason, reference string) (int, error)
}

// UsageCounter is the slice of the quota service the profiler needs.
type UsageCounter interface {
	Usage(ctx context.Context, userID string) (int, error)
	Increment(ctx context.Context, userID string) (int, error)
}

type Service struct {
	chat    ChatCaller
	chatKey string
	pages   ContentSource
	quota   UsageCounter
	ledger  Ledger
}

func NewService(chat ChatCaller, chatKey string, pages ContentSource, usage UsageCounter, ledger Ledger) *Service {
	return &Service{chat: chat, chatKey: chatKey, pages: pages, quota: usage, ledger: ledger}
}

// Enabled reports whether the model ladder can run at all.
func (s *Service) Enabled() bool {
	return s.chat != nil && s.chatKey != ""
}

// Request is one analysis to run.
type Request struct {
	UserID      string
	Email       string
	WebsiteURL  string
	Content     string
	Temperature float64
	MaxTokens   int
}

// Response is the payload handlers return for a finished analysis.
type Response struct {
	Success      bool     `json:"success"`
	Data         *Profile `json:"data"`
	ModelUsed    string   `json:"model_used"`
	ProviderUsed string   `json:"provider_used"`
	Attempt      int      `json:"attempt"`
	UserCredits  int      `json:"user_credits"`
}

// Analyze resolves content, settles quota and credits, and runs the ladder.
// The heuristic classifier answers when every model fails, so a working
// scrape never turns into an error response.
func (s *Service) Analyze(ctx context.Context, req Request) (*Response, error) {
	content := req.Content
	title := ""
	if content == "" {
		if req.WebsiteURL == "" || s.pages == nil {
			return nil, ErrNoContent
		}
		page, err := s.pages.Scrape(ctx, req.WebsiteURL)
		if err != nil {
			return nil, &ScrapeError{Err: err}
		}
		content = renderPage(page)
		title = page.Title
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

	cost := 0
	balance := user.Credits
	if usage >= limit {
		cost = credits.CostAnalysis
		balance, err = s.ledger.Spend(ctx, req.UserID, cost, "analysis", "url:"+req.WebsiteURL)
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

	profile, model, attempt := s.runLadder(ctx, content, req.Temperature, req.MaxTokens)
	providerUsed := provider.ProviderOpenRouter
	if model == HeuristicModel {
		providerUsed = ProviderHeuristic
		if profile = HeuristicProfile(title, content); profile == nil {
			profile = &Profile{}
		}
	}

	if _, err := s.quota.Increment(ctx, req.UserID); err != nil {
		log.Printf("Quota increment for user %s: %v", req.UserID, err)
	}

	metrics.ObserveGeneration("analysis", providerUsed, model, "success")
	log.Printf("Analyzed website for user %s via %s (attempt %d)", req.UserID, model, attempt)

	return &Response{
		Success:      true,
		Data:         profile,
		ModelUsed:    model,
		ProviderUsed: providerUsed,
		Attempt:      attempt,
		UserCredits:  balance,
	}, nil
}

// runLadder tries each analysis model in order and returns the first profile
// that parses. The heuristic sentinel is returned when all rungs fail.
func (s *Service) runLadder(ctx context.Context, content string, temperature float64, maxTokens int) (*Profile, string, int) {
	if !s.Enabled() {
		return nil, HeuristicModel, 1
	}
	if temperature == 0 {
		temperature = defaultTemperature
	}
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	ladder := AnalysisModels()
	for i, model := range ladder {
		req := &provider.ChatRequest{
			Model: model,
			Messages: []provider.ChatMessage{
				{Role: "user", Content: extractionPrompt(content)},
			},
			Temperature: temperature,
			MaxTokens:   maxTokens,
		}

		resp, err := s.chat.ChatCompletion(ctx, s.chatKey, req)
		if err != nil {
			log.Printf("Analysis model %s failed: %v", model, err)
			continue
		}
		if len(resp.Choices) == 0 {
			log.Printf("Analysis model %s returned no choices", model)
			continue
		}

		profile, err := ParseProfile(resp.Choices[0].Message.Content)
		if err != nil {
			log.Printf("Analysis model %s returned unparseable JSON: %v", model, err)
			continue
		}
		return profile, model, i + 1
	}

	return nil, HeuristicModel, len(ladder) + 1
}

func extractionPrompt(content string) string {
	var b strings.Builder
	b.WriteString("Analyze this website content and extract the business information. ")
	b.WriteString("Respond with only a JSON object with exactly these keys: ")
	b.WriteString(`businessName, businessType, location, targetAudience, services, valueProposition, callsToAction. `)
	b.WriteString("callsToAction is an array of short strings; every other value is a string. ")
	b.WriteString("Use an empty string when the content does not say.\n\nWebsite content:\n")
	b.WriteString(content)
	return b.String()
}

// ParseProfile reads a model reply into a Profile. Replies wrapped in
// markdown fences or surrounded by prose are accepted.
func ParseProfile(reply string) (*Profile, error) {
	raw := strings.TrimSpace(reply)
	if raw == "" {
		return nil, errors.New("empty reply")
	}

	if i := strings.Index(raw, "{"); i >= 0 {
		if j := strings.LastIndex(raw, "}"); j > i {
			raw = raw[i : j+1]
		}
	}

	var profile Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, err
	}
	if profile.BusinessName == "" && profile.BusinessType == "" {
		return nil, errors.New("reply carries no business fields")
	}
	return &profile, nil
}

// renderPage flattens a scrape result into analysis input.
func renderPage(page *scraper.Result) string {
	var b strings.Builder
	if page.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", page.Title)
	}
	if page.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", page.Description)
	}
	if len(page.Services) > 0 {
		fmt.Fprintf(&b, "Services: %s\n", strings.Join(page.Services, ", "))
	}
	if len(page.Emails) > 0 {
		fmt.Fprintf(&b, "Contact email: %s\n", page.Emails[0])
	}
	b.WriteString("\n")
	b.WriteString(page.Text)
	return b.String()
}

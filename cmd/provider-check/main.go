// Command provider-check round-trips every configured generation credential
// with a tiny prompt and prints a PASS/FAIL table. Exits 1 when any check
// fails, so it can gate a deploy.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/nevisai/platform/internal/config"
	"github.com/nevisai/platform/internal/provider"
)

const (
	checkModel   = "gemini-2.5-flash"
	checkPrompt  = "Reply with the single word OK."
	checkTimeout = 30 * time.Second
)

type check struct {
	name string
	run  func(ctx context.Context) error
}

func main() {
	cfg := config.Load()

	checks := buildChecks(cfg)
	if len(checks) == 0 {
		log.Fatal("No provider keys configured; nothing to check")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tRESULT\tLATENCY\tDETAIL")

	failed := 0
	for _, c := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		start := time.Now()
		err := c.run(ctx)
		cancel()
		latency := time.Since(start).Round(time.Millisecond)

		if err != nil {
			failed++
			fmt.Fprintf(w, "%s\tFAIL\t%s\t%v\n", c.name, latency, err)
			continue
		}
		fmt.Fprintf(w, "%s\tPASS\t%s\t\n", c.name, latency)
	}
	w.Flush()

	if failed > 0 {
		fmt.Printf("\n%d of %d checks failed\n", failed, len(checks))
		os.Exit(1)
	}
	fmt.Printf("\nAll %d checks passed\n", len(checks))
}

func buildChecks(cfg *config.Config) []check {
	gemini := provider.NewGemini()
	openRouter := provider.NewOpenRouter(cfg.SiteURL, cfg.SiteName)

	var checks []check
	if cfg.GeminiKey != "" {
		checks = append(checks, geminiCheck("gemini (shared key)", gemini, cfg.GeminiKey))
	}

	revisions := make([]string, 0, len(cfg.GeminiKeyRevo))
	for rev := range cfg.GeminiKeyRevo {
		revisions = append(revisions, rev)
	}
	sort.Strings(revisions)
	for _, rev := range revisions {
		key := cfg.GeminiKeyRevo[rev]
		if key == "" || key == cfg.GeminiKey {
			continue
		}
		checks = append(checks, geminiCheck("gemini (revo "+rev+" key)", gemini, key))
	}

	if cfg.OpenRouterKey != "" {
		checks = append(checks, check{
			name: "openrouter",
			run: func(ctx context.Context) error {
				resp, err := openRouter.ChatCompletion(ctx, cfg.OpenRouterKey, &provider.ChatRequest{
					Model:     provider.OpenRouterModel(checkModel),
					Messages:  []provider.ChatMessage{{Role: "user", Content: checkPrompt}},
					MaxTokens: 16,
				})
				if err != nil {
					return err
				}
				if len(resp.Choices) == 0 {
					return fmt.Errorf("no choices in reply")
				}
				return nil
			},
		})
	}

	return checks
}

func geminiCheck(name string, client *provider.GeminiClient, key string) check {
	return check{
		name: name,
		run: func(ctx context.Context) error {
			resp, err := client.Generate(ctx, key, checkModel, &provider.GoogleRequest{
				Contents: []provider.Content{{
					Parts: []provider.Part{{Text: checkPrompt}},
					Role:  "user",
				}},
				GenerationConfig: provider.GenerationConfig{MaxOutputTokens: 16},
			})
			if err != nil {
				return err
			}
			if len(resp.Candidates) == 0 {
				return fmt.Errorf("no candidates in reply")
			}
			return nil
		},
	}
}

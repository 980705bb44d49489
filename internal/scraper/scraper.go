// Package scraper fetches a website and pulls out the signals the profiler
// and brand setup care about: contact details, social profiles, service
// lists, and the readable text.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	cacheTTL     = 15 * time.Minute
	maxBodyBytes = 5 << 20
	maxTextRunes = 5000
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().\-]{7,16}\d`)
	spaceRe = regexp.MustCompile(`\s+`)
)

var socialHosts = map[string]string{
	"facebook.com":  "facebook",
	"instagram.com": "instagram",
	"twitter.com":   "twitter",
	"x.com":         "twitter",
	"linkedin.com":  "linkedin",
	"tiktok.com":    "tiktok",
	"youtube.com":   "youtube",
}

var serviceHeadingRe = regexp.MustCompile(`(?i)\b(services?|offerings?|solutions|what we do|menu|treatments)\b`)

// Result is everything extracted from one page.
type Result struct {
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Emails      []string          `json:"emails"`
	Phones      []string          `json:"phones"`
	SocialLinks map[string]string `json:"social_links"`
	Services    []string          `json:"services"`
	Text        string            `json:"text"`
	FetchedAt   time.Time         `json:"fetched_at"`
}

type cacheEntry struct {
	result  *Result
	fetched time.Time
}

type Scraper struct {
	client *resty.Client
	ttl    time.Duration

	mu    sync.RWMutex
	cache map[string]*cacheEntry
}

func New() *Scraper {
	return &Scraper{
		client: resty.New().SetTimeout(20 * time.Second),
		ttl:    cacheTTL,
		cache:  make(map[string]*cacheEntry),
	}
}

// Scrape fetches url and extracts its signals. Results are cached briefly so
// a scrape-then-analyze sequence only hits the site once.
func (s *Scraper) Scrape(ctx context.Context, url string) (*Result, error) {
	s.mu.RLock()
	entry, ok := s.cache[url]
	s.mu.RUnlock()
	if ok && time.Since(entry.fetched) < s.ttl {
		return entry.result, nil
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", "nevis-platform-scraper").
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, fmt.Errorf("fetch %s: not an HTML page (%s)", url, ct)
	}
	body := resp.Body()
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("fetch %s: page too large (%d bytes)", url, len(body))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	result := extract(url, doc)

	s.mu.Lock()
	if len(s.cache) > 512 {
		for k, e := range s.cache {
			if time.Since(e.fetched) >= s.ttl {
				delete(s.cache, k)
			}
		}
	}
	s.cache[url] = &cacheEntry{result: result, fetched: time.Now()}
	s.mu.Unlock()

	return result, nil
}

func extract(url string, doc *goquery.Document) *Result {
	result := &Result{
		URL:         url,
		SocialLinks: map[string]string{},
		FetchedAt:   time.Now(),
	}

	result.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if result.Title == "" {
		result.Title, _ = doc.Find(`meta[property="og:title"]`).Attr("content")
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		result.Description = strings.TrimSpace(desc)
	}
	if result.Description == "" {
		if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
			result.Description = strings.TrimSpace(desc)
		}
	}

	emails := map[string]bool{}
	phones := map[string]bool{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		switch {
		case strings.HasPrefix(href, "mailto:"):
			addr := strings.TrimPrefix(href, "mailto:")
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			if addr != "" {
				emails[strings.ToLower(addr)] = true
			}
		case strings.HasPrefix(href, "tel:"):
			num := strings.TrimPrefix(href, "tel:")
			num = strings.ReplaceAll(num, " ", "")
			if num != "" {
				phones[num] = true
			}
		case strings.HasPrefix(href, "http"):
			for host, platform := range socialHosts {
				if strings.Contains(href, host) {
					if _, seen := result.SocialLinks[platform]; !seen {
						result.SocialLinks[platform] = href
					}
				}
			}
		}
	})

	doc.Find("script, style, noscript").Remove()
	text := spaceRe.ReplaceAllString(doc.Find("body").Text(), " ")
	text = strings.TrimSpace(text)

	for _, m := range emailRe.FindAllString(text, -1) {
		emails[strings.ToLower(m)] = true
	}
	for _, m := range phoneRe.FindAllString(text, -1) {
		if digits := countDigits(m); digits >= 9 && digits <= 15 {
			phones[strings.TrimSpace(m)] = true
		}
	}

	result.Emails = sortedKeys(emails)
	result.Phones = sortedKeys(phones)
	result.Services = extractServices(doc)

	if runes := []rune(text); len(runes) > maxTextRunes {
		text = string(runes[:maxTextRunes])
	}
	result.Text = text

	return result
}

// extractServices walks headings that look like a services section and
// collects the list items that follow.
func extractServices(doc *goquery.Document) []string {
	seen := map[string]bool{}
	var services []string

	add := func(s string) {
		s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
		if len(s) < 3 || len(s) > 80 {
			return
		}
		key := strings.ToLower(s)
		if seen[key] {
			return
		}
		seen[key] = true
		services = append(services, s)
	}

	doc.Find("h1, h2, h3, h4").Each(func(_ int, h *goquery.Selection) {
		if !serviceHeadingRe.MatchString(h.Text()) {
			return
		}
		h.NextAllFiltered("ul, ol").First().Find("li").Each(func(_ int, li *goquery.Selection) {
			add(li.Text())
		})
		h.Parent().Find("ul li, ol li").Each(func(_ int, li *goquery.Selection) {
			add(li.Text())
		})
	})

	doc.Find(`[class*="service"] li, [id*="service"] li`).Each(func(_ int, li *goquery.Selection) {
		add(li.Text())
	})

	if len(services) > 12 {
		services = services[:12]
	}
	return services
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Package screenshot captures full-page website screenshots for design
// analysis. Captures go through an on-disk cache keyed by URL hash so
// repeated looks at the same site don't relaunch the browser.
package screenshot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	cacheExpirationTime = 12 * time.Hour
	cachePurgeInterval  = 5 * time.Minute
)

type cacheItem struct {
	filePath  string
	timestamp time.Time
}

type Service struct {
	cacheDir string
	enabled  bool

	mu    sync.RWMutex
	cache map[string]cacheItem

	// swappable for tests
	capture func(url string) ([]byte, error)
}

func NewService(cacheDir string) *Service {
	return &Service{
		cacheDir: cacheDir,
		cache:    make(map[string]cacheItem),
		capture:  takeScreenshot,
	}
}

// Setup prepares the cache directory and the browser runtime and starts the
// background purge loop. On error the service stays disabled; the rest of
// the server keeps running.
func (s *Service) Setup() error {
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := installPlaywrightBrowsers(); err != nil {
		return err
	}

	s.enabled = true
	go s.cleanExpiredCache()
	return nil
}

// Enabled reports whether captures can run.
func (s *Service) Enabled() bool { return s.enabled }

// Capture returns a PNG of the page at url, serving from cache while fresh.
func (s *Service) Capture(url string) ([]byte, error) {
	key := cacheKey(url)
	if img, ok := s.cachedScreenshot(key); ok {
		return img, nil
	}

	img, err := s.capture(url)
	if err != nil {
		return nil, err
	}

	s.saveToCache(key, img)
	return img, nil
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (s *Service) cachedScreenshot(key string) ([]byte, bool) {
	s.mu.RLock()
	item, exists := s.cache[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if time.Since(item.timestamp) < cacheExpirationTime {
		img, err := os.ReadFile(item.filePath)
		if err == nil {
			return img, true
		}
		log.Printf("Error reading cached screenshot: %v", err)
	}
	return nil, false
}

func (s *Service) saveToCache(key string, img []byte) {
	path := filepath.Join(s.cacheDir, key+".png")
	if err := os.WriteFile(path, img, 0644); err != nil {
		log.Printf("Failed to write screenshot to cache: %v", err)
		return
	}

	s.mu.Lock()
	s.cache[key] = cacheItem{filePath: path, timestamp: time.Now()}
	s.mu.Unlock()
}

func (s *Service) cleanExpiredCache() {
	for {
		time.Sleep(cachePurgeInterval)

		s.mu.Lock()
		now := time.Now()
		for key, item := range s.cache {
			if now.Sub(item.timestamp) > cacheExpirationTime {
				if err := os.Remove(item.filePath); err != nil {
					log.Printf("Failed to remove expired cache file: %v", err)
				}
				delete(s.cache, key)
			}
		}
		s.mu.Unlock()
	}
}

// Package quota tracks monthly generation counts per user. Counters are
// keyed by calendar month, so stale months simply stop being read and no
// reset job is needed.
package quota

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tier limits: how many generations per month come free before credits are
// spent.
const (
	FreeTierLimit   = 40
	GrowthTierLimit = 250
	ProTierLimit    = 1000
)

// TierLimit maps a tier name to its monthly allowance. Unknown tiers get the
// free allowance.
func TierLimit(tier string) int {
	switch tier {
	case "growth":
		return GrowthTierLimit
	case "pro":
		return ProTierLimit
	default:
		return FreeTierLimit
	}
}

// MonthKey renders t as the YYYY-MM bucket key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ExceededError is returned when a user is past their monthly allowance with
// nothing left to pay with.
type ExceededError struct {
	Used  int
	Limit int
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("Monthly quota exceeded (%d/%d)", e.Used, e.Limit)
}

// Counter stores per-user monthly usage.
type Counter interface {
	Usage(ctx context.Context, userID, month string) (int, error)
	Increment(ctx context.Context, userID, month string) (int, error)
}

// MemoryCounter keeps counts in process memory. Good for a single replica
// with <1000 users; anything bigger should run the Redis counter.
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[string]*memoryEntry
}

type memoryEntry struct {
	count int
	month string
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: make(map[string]*memoryEntry)}
}

func (m *MemoryCounter) Usage(_ context.Context, userID, month string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.counts[userID]
	if !ok || entry.month != month {
		return 0, nil
	}
	return entry.count, nil
}

func (m *MemoryCounter) Increment(_ context.Context, userID, month string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.counts[userID]
	if !ok || entry.month != month {
		entry = &memoryEntry{month: month}
		m.counts[userID] = entry
	}
	entry.count++
	return entry.count, nil
}

// RedisCounter keeps counts in Redis so every replica sees the same numbers.
// Keys expire after two months, comfortably past their last read.
type RedisCounter struct {
	rdb *redis.Client
}

const redisKeyTTL = 62 * 24 * time.Hour

func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

func redisKey(userID, month string) string {
	return fmt.Sprintf("quota:%s:%s", userID, month)
}

func (r *RedisCounter) Usage(ctx context.Context, userID, month string) (int, error) {
	n, err := r.rdb.Get(ctx, redisKey(userID, month)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("quota usage for %s: %w", userID, err)
	}
	return n, nil
}

func (r *RedisCounter) Increment(ctx context.Context, userID, month string) (int, error) {
	key := redisKey(userID, month)
	n, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("quota increment for %s: %w", userID, err)
	}
	if n == 1 {
		r.rdb.Expire(ctx, key, redisKeyTTL)
	}
	return int(n), nil
}

// Service answers usage questions against whichever counter is configured.
type Service struct {
	counter Counter
	now     func() time.Time
}

func NewService(counter Counter) *Service {
	return &Service{counter: counter, now: time.Now}
}

// Usage returns the user's count for the current month.
func (s *Service) Usage(ctx context.Context, userID string) (int, error) {
	return s.counter.Usage(ctx, userID, MonthKey(s.now()))
}

// Increment bumps the user's count for the current month and returns the new
// value.
func (s *Service) Increment(ctx context.Context, userID string) (int, error) {
	return s.counter.Increment(ctx, userID, MonthKey(s.now()))
}

// Month returns the current bucket key, for reporting.
func (s *Service) Month() string {
	return MonthKey(s.now())
}

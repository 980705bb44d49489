package cleanup

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevisai/platform/internal/models"
)

const mediaPrefix = "https://cdn.example.com/media/"

type fakeStore struct {
	mu     sync.Mutex
	posts  []models.GeneratedPost
	cutoff time.Time
}

func (f *fakeStore) OlderThan(_ context.Context, cutoff time.Time, limit int) ([]models.GeneratedPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoff = cutoff
	if limit > len(f.posts) {
		limit = len(f.posts)
	}
	out := make([]models.GeneratedPost, limit)
	copy(out, f.posts[:limit])
	return out, nil
}

func (f *fakeStore) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doomed := map[string]bool{}
	for _, id := range ids {
		doomed[id] = true
	}
	var kept []models.GeneratedPost
	var n int64
	for _, p := range f.posts {
		if doomed[p.ID] {
			n++
			continue
		}
		kept = append(kept, p)
	}
	f.posts = kept
	return n, nil
}

func (f *fakeStore) remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

type fakeRemover struct {
	mu      sync.Mutex
	deleted []string
	failOn  string
}

func (f *fakeRemover) ObjectPath(publicURL string) (string, bool) {
	if !strings.HasPrefix(publicURL, mediaPrefix) {
		return "", false
	}
	return strings.TrimPrefix(publicURL, mediaPrefix), true
}

func (f *fakeRemover) Delete(_ context.Context, paths ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range paths {
		if p == f.failOn {
			return errors.New("storage unavailable")
		}
		f.deleted = append(f.deleted, p)
	}
	return nil
}

func mediaPost(id, object string) models.GeneratedPost {
	url := mediaPrefix + object
	return models.GeneratedPost{ID: id, Kind: "image", ImageURL: &url}
}

func TestRunDeletesPostsAndMedia(t *testing.T) {
	external := "https://elsewhere.example.com/pic.png"
	store := &fakeStore{posts: []models.GeneratedPost{
		mediaPost("p1", "users/u1/p1.png"),
		mediaPost("p2", "users/u1/p2.png"),
		{ID: "p3", Kind: "text"},
		{ID: "p4", Kind: "image", ImageURL: &external},
	}}
	uploads := &fakeRemover{}
	svc := NewService(store, uploads, 90)
	now := time.Date(2025, time.October, 1, 5, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	stats, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 4, stats.PostsDeleted)
	assert.Equal(t, 2, stats.ObjectsDeleted)
	assert.Zero(t, stats.MediaErrors)
	assert.Zero(t, store.remaining())
	assert.ElementsMatch(t, []string{"users/u1/p1.png", "users/u1/p2.png"}, uploads.deleted)
	assert.Equal(t, now.Add(-90*24*time.Hour), store.cutoff)
}

func TestRunSweepsInBatches(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 7; i++ {
		store.posts = append(store.posts, models.GeneratedPost{ID: string(rune('a' + i)), Kind: "text"})
	}
	svc := NewService(store, &fakeRemover{}, 30)
	svc.batchSize = 2

	stats, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 7, stats.PostsDeleted)
	assert.Zero(t, store.remaining())
}

func TestRunKeepsRowsWhoseMediaSurvives(t *testing.T) {
	store := &fakeStore{posts: []models.GeneratedPost{
		mediaPost("p1", "users/u1/p1.png"),
		mediaPost("p2", "users/u1/p2.png"),
	}}
	uploads := &fakeRemover{failOn: "users/u1/p2.png"}
	svc := NewService(store, uploads, 90)

	stats, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 1, stats.PostsDeleted)
	assert.Equal(t, 1, stats.ObjectsDeleted)
	assert.NotZero(t, stats.MediaErrors)

	// The failed post stays behind for the next sweep.
	require.Equal(t, 1, store.remaining())
	assert.Equal(t, "p2", store.posts[0].ID)
}

func TestSetupCronLocationFallback(t *testing.T) {
	svc := NewService(&fakeStore{}, &fakeRemover{}, 30)

	c := SetupCron("Not/AZone", svc)
	defer c.Stop()
	assert.Equal(t, time.UTC, c.Location())
	assert.Len(t, c.Entries(), 1)
}

func TestManualTrigger(t *testing.T) {
	store := &fakeStore{posts: []models.GeneratedPost{{ID: "p1", Kind: "text"}}}
	svc := NewService(store, &fakeRemover{}, 30)

	app := fiber.New()
	MountController(app, svc)

	resp, err := app.Test(httptest.NewRequest("POST", "/cleanup/run", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The sweep runs in the background.
	assert.Eventually(t, func() bool { return store.remaining() == 0 },
		2*time.Second, 10*time.Millisecond)
}

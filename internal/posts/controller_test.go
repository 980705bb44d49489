package posts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nevisai/platform/internal/auth"
	"github.com/nevisai/platform/internal/models"
)

type fakeStore struct {
	posts   map[string]*models.GeneratedPost
	deleted []string
}

func (f *fakeStore) ListByUser(_ context.Context, userID string, opts ListOptions) ([]models.GeneratedPost, error) {
	var out []models.GeneratedPost
	for _, p := range f.posts {
		if p.UserID != userID {
			continue
		}
		if opts.Kind != "" && p.Kind != opts.Kind {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (*models.GeneratedPost, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeStore) Delete(_ context.Context, id, userID string) error {
	p, ok := f.posts[id]
	if !ok || p.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(f.posts, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRemover struct {
	removed []string
}

func (f *fakeRemover) Delete(_ context.Context, paths ...string) error {
	f.removed = append(f.removed, paths...)
	return nil
}

func (f *fakeRemover) ObjectPath(publicURL string) (string, bool) {
	const prefix = "https://cdn.test/bucket/"
	if len(publicURL) > len(prefix) && publicURL[:len(prefix)] == prefix {
		return publicURL[len(prefix):], true
	}
	return "", false
}

func seededStore() *fakeStore {
	url := "https://cdn.test/bucket/users/owner/post-1.jpg"
	return &fakeStore{posts: map[string]*models.GeneratedPost{
		"post-1": {ID: "post-1", UserID: "owner", Kind: "image", ImageURL: &url, CreatedAt: time.Now()},
		"post-2": {ID: "post-2", UserID: "owner", Kind: "text", CreatedAt: time.Now()},
		"post-3": {ID: "post-3", UserID: "someone-else", Kind: "text", CreatedAt: time.Now()},
	}}
}

func postsApp(store *fakeStore, remover *fakeRemover) *fiber.App {
	app := fiber.New()
	app.Use(auth.Middleware("test-jwt-secret-0123456789abcdef0123456789", "svc-key"))
	MountController(app, store, remover)
	return app
}

func doServiceReq(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Service-Key", "svc-key")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestListOwnPosts(t *testing.T) {
	app := postsApp(seededStore(), &fakeRemover{})

	resp := doServiceReq(t, app, "GET", "/posts?user_id=owner")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Posts []models.GeneratedPost `json:"posts"`
		Count int                    `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	for _, p := range body.Posts {
		assert.Equal(t, "owner", p.UserID)
	}
}

func TestListPostsFilteredByKind(t *testing.T) {
	app := postsApp(seededStore(), &fakeRemover{})

	resp := doServiceReq(t, app, "GET", "/posts?user_id=owner&kind=image")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Posts []models.GeneratedPost `json:"posts"`
		Count int                    `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "post-1", body.Posts[0].ID)
}

func TestGetPostHidesOtherUsers(t *testing.T) {
	app := postsApp(seededStore(), &fakeRemover{})

	resp := doServiceReq(t, app, "GET", "/posts/post-3?user_id=owner")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doServiceReq(t, app, "GET", "/posts/post-2?user_id=owner")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetMissingPost(t *testing.T) {
	app := postsApp(seededStore(), &fakeRemover{})
	resp := doServiceReq(t, app, "GET", "/posts/nope?user_id=owner")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeletePostRemovesMedia(t *testing.T) {
	store := seededStore()
	remover := &fakeRemover{}
	app := postsApp(store, remover)

	resp := doServiceReq(t, app, "DELETE", "/posts/post-1?user_id=owner")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.NotContains(t, store.posts, "post-1")
	assert.Equal(t, []string{"users/owner/post-1.jpg"}, remover.removed)
}

func TestDeleteOtherUsersPost(t *testing.T) {
	store := seededStore()
	app := postsApp(store, &fakeRemover{})

	resp := doServiceReq(t, app, "DELETE", "/posts/post-3?user_id=owner")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, store.posts, "post-3")
}

func TestPostsRequireAuth(t *testing.T) {
	app := postsApp(seededStore(), &fakeRemover{})
	resp, err := app.Test(httptest.NewRequest("GET", "/posts", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

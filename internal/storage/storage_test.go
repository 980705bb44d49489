package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	var gotPath, gotAuth, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"Key":"generated-content/users/u1/p1.jpg"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "service-key", "generated-content")
	require.True(t, client.Enabled())

	url, err := client.Upload(context.Background(), "users/u1/p1.jpg", []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/generated-content/users/u1/p1.jpg", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Equal(t, []byte("jpeg-bytes"), gotBody)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/generated-content/users/u1/p1.jpg", url)
}

func TestUploadErrorSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"bucket not found"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "service-key", "missing-bucket")
	_, err := client.Upload(context.Background(), "a.jpg", []byte("x"), "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "bucket not found")
}

func TestUploadDisabled(t *testing.T) {
	client := NewClient("", "", "bucket")
	assert.False(t, client.Enabled())
	_, err := client.Upload(context.Background(), "a.jpg", []byte("x"), "image/jpeg")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	var gotPrefixes []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/storage/v1/object/generated-content", r.URL.Path)
		var body struct {
			Prefixes []string `json:"prefixes"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotPrefixes = body.Prefixes
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "service-key", "generated-content")
	err := client.Delete(context.Background(), "users/u1/a.jpg", "users/u1/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"users/u1/a.jpg", "users/u1/b.jpg"}, gotPrefixes)

	// No paths is a no-op, not a request.
	require.NoError(t, client.Delete(context.Background()))
}

func TestObjectPath(t *testing.T) {
	client := NewClient("https://abc.supabase.co", "key", "generated-content")

	path, ok := client.ObjectPath("https://abc.supabase.co/storage/v1/object/public/generated-content/users/u1/p.jpg")
	require.True(t, ok)
	assert.Equal(t, "users/u1/p.jpg", path)

	_, ok = client.ObjectPath("https://elsewhere.example.com/x.jpg")
	assert.False(t, ok)
}

// Package storage uploads generated media to Supabase Storage over its REST
// API and hands back public URLs.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	client     *resty.Client
	baseURL    string
	serviceKey string
	bucket     string
}

// NewClient builds a client for one bucket. An empty baseURL or serviceKey
// leaves the client disabled; callers keep working without uploads.
func NewClient(baseURL, serviceKey, bucket string) *Client {
	return &Client{
		client:     resty.New(),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
	}
}

func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.serviceKey != "" && c.bucket != ""
}

// Upload stores data under path in the bucket and returns the public URL.
// Existing objects at the same path are overwritten.
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("storage not configured")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.serviceKey).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, path))
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("upload %s: %d - %s", path, resp.StatusCode(), resp.String())
	}

	return c.PublicURL(path), nil
}

// Delete removes objects by path. Missing objects are not an error.
func (c *Client) Delete(ctx context.Context, paths ...string) error {
	if !c.Enabled() || len(paths) == 0 {
		return nil
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.serviceKey).
		SetBody(map[string][]string{"prefixes": paths}).
		Delete(fmt.Sprintf("%s/storage/v1/object/%s", c.baseURL, c.bucket))
	if err != nil {
		return fmt.Errorf("delete %d objects: %w", len(paths), err)
	}
	if resp.IsError() && resp.StatusCode() != 404 {
		return fmt.Errorf("delete objects: %d - %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// PublicURL renders the unauthenticated URL for an object in a public bucket.
func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, path)
}

// ObjectPath extracts the bucket-relative path from a public URL produced by
// PublicURL. Returns false for URLs outside this bucket.
func (c *Client) ObjectPath(publicURL string) (string, bool) {
	prefix := fmt.Sprintf("%s/storage/v1/object/public/%s/", c.baseURL, c.bucket)
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	return publicURL[len(prefix):], true
}

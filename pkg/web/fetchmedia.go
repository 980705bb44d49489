package web

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

var client = resty.New()

// FetchMedia downloads the bytes behind mediaURI.
func FetchMedia(ctx context.Context, mediaURI string) ([]byte, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("User-Agent", "nevis-platform-fetchMedia").
		Get(mediaURI)
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch media: %s, %s", resp.Status(), resp.String())
	}

	return resp.Body(), nil
}

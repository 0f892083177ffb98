// Package imaging retrieves page images, decodes them, and slices them into
// bounded-height bands for the detection service.
package imaging

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Fetcher retrieves image bytes over HTTP with optional basic auth.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. A zero timeout disables the client timeout
// and leaves cancellation to the request context.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads the image at url. user/pass, when non-empty, are sent as
// basic auth. Any network failure or non-2xx status returns a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url, user, pass string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if user != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return body, nil
}

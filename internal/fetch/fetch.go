// Package fetch defines the injected fetch capability: absolute URL in, raw
// document bytes out. The core never touches transport details beyond this.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Fetcher retrieves the raw bytes behind an absolute URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Func adapts a plain function to the Fetcher interface.
type Func func(ctx context.Context, url string) ([]byte, error)

func (f Func) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

type debugLogger interface {
	Debugf(string, ...any)
}

// HTTPFetcher fetches over a shared *http.Client.
type HTTPFetcher struct {
	client *http.Client
	log    debugLogger
}

// NewHTTP wraps the client. log may be nil.
func NewHTTP(client *http.Client, log debugLogger) *HTTPFetcher {
	return &HTTPFetcher{client: client, log: log}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	if f.log != nil {
		f.log.Debugf("GET %s\n", target)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: HTTP %d", target, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}

	return data, nil
}

package goYK

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBytes caps how much of a response body is read. Protocol bodies
// are a handful of short lines.
const maxResponseBytes = 8 << 10

// httpHardTimeout is a safety net on the bundled fetcher, independent of the
// per-call TimeoutSeconds applied through the context.
const httpHardTimeout = 30 * time.Second

// HTTPFetcher is the bundled Fetcher implementation on net/http. It is safe
// for concurrent use and honors context cancellation, so the racer can
// abandon it mid-flight.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher with its own transport. When verifyTLS is
// false, server certificates are not validated; this is a caller decision
// passed through from EndpointConfig.
func NewHTTPFetcher(verifyTLS bool) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !verifyTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   httpHardTimeout,
		},
	}
}

// Fetch performs a GET and returns the body. Any non-200 answer counts as a
// transport error: the protocol always carries its outcome in a 200 body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("endpoint returned HTTP %d", resp.StatusCode)
	}
	return string(body), nil
}

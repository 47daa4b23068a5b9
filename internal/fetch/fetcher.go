// Package fetch retrieves remote documents with an on-disk HTTP cache, an
// in-memory hot layer and bounded retries. Cached entries are reused while
// their Cache-Control max-age allows it.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	gocache "github.com/patrickmn/go-cache"

	"github.com/importls/importls/internal/ierrors"
	"github.com/importls/importls/internal/logger"
)

const (
	// negativeCacheControl marks a failed fetch as cached for one week so
	// repeated calls against an unreachable URL stay offline until then.
	negativeCacheControl = "max-age=604800, immutable"

	memExpiration = 5 * time.Minute
	memCleanup    = 10 * time.Minute

	maxTries = 3
)

// Fetcher fetches URLs with caching. It is safe for concurrent use.
type Fetcher struct {
	disk   *diskCache
	mem    *gocache.Cache
	client *http.Client
	log    *logger.Logger
}

// New creates a fetcher persisting its cache under location.
func New(location string, log *logger.Logger) (*Fetcher, error) {
	disk, err := newDiskCache(location)
	if err != nil {
		return nil, fmt.Errorf("creating fetch cache: %w", err)
	}
	return &Fetcher{
		disk:   disk,
		mem:    gocache.New(memExpiration, memCleanup),
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}, nil
}

// Fetch returns the body for url, from the memory layer, the disk cache or
// the network, in that order. Network failures are retried with exponential
// backoff; client errors (4xx) are not.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if cached, ok := f.mem.Get(url); ok {
		return cached.([]byte), nil
	}
	if body, meta, ok := f.disk.get(url); ok && meta.fresh(time.Now()) {
		f.mem.Set(url, body, gocache.DefaultExpiration)
		return body, nil
	}

	var headers map[string]string
	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, backoff.Permanent(fmt.Errorf("unexpected status %s", resp.Status))
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		headers = make(map[string]string, len(resp.Header))
		for name := range resp.Header {
			headers[name] = resp.Header.Get(name)
		}
		return body, nil
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxTries),
	)
	if err != nil {
		return nil, ierrors.NewFetchError(url, fmt.Sprintf("failed to fetch %q", url), err)
	}

	if err := f.disk.set(url, headers, body); err != nil {
		f.log.Warn().Str("url", url).Err(err).Msg("Could not persist fetched document")
	}
	f.mem.Set(url, body, gocache.DefaultExpiration)
	return body, nil
}

// CacheNegativeResult records an empty document for url with a one-week
// freshness window, so subsequent fetches fail fast without network access.
func (f *Fetcher) CacheNegativeResult(url string) error {
	f.mem.Delete(url)
	return f.disk.set(url, map[string]string{"Cache-Control": negativeCacheControl}, []byte{})
}

package registry

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/importls/importls/internal/fetch"
	"github.com/importls/importls/internal/logger"
)

// wellKnownPath is where an origin publishes its import completion
// configuration.
const wellKnownPath = "/.well-known/deno-import-intellisense.json"

// baseURL returns the origin serialization of a URL: scheme, host and port,
// without path, query or fragment.
func baseURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

// Registry holds the configurations of enabled origins and provides
// completion information for URLs that match one of them. The origin map is
// read concurrently by completion requests; Enable and Disable are the only
// mutators.
type Registry struct {
	mu      sync.RWMutex
	origins map[string][]Configuration
	fetcher *fetch.Fetcher
	log     *logger.Logger
}

// New creates a registry whose fetch cache persists under location.
func New(location string, log *logger.Logger) (*Registry, error) {
	fetcher, err := fetch.New(location, log)
	if err != nil {
		return nil, fmt.Errorf("creating registry fetcher: %w", err)
	}
	return &Registry{
		origins: make(map[string][]Configuration),
		fetcher: fetcher,
		log:     log,
	}, nil
}

// Enable fetches, validates and stores the configuration for an origin. It is
// an idempotent no-op when the origin is already enabled.
func (r *Registry) Enable(ctx context.Context, origin string) error {
	originURL, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	base := baseURL(originURL)

	r.mu.RLock()
	_, enabled := r.origins[base]
	r.mu.RUnlock()
	if enabled {
		return nil
	}

	configURL, err := originURL.Parse(wellKnownPath)
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	configs, err := r.fetchConfig(ctx, configURL.String())
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.origins[base] = configs
	r.mu.Unlock()
	return nil
}

// Disable removes an origin's configuration, if any. Disabling an unknown
// origin is a no-op.
func (r *Registry) Disable(origin string) error {
	originURL, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	r.mu.Lock()
	delete(r.origins, baseURL(originURL))
	r.mu.Unlock()
	return nil
}

// CheckOrigin probes an origin's well-known configuration URL without
// mutating stored state, failing with the underlying fetch, decode or
// validation error.
func (r *Registry) CheckOrigin(ctx context.Context, origin string) error {
	originURL, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	configURL, err := originURL.Parse(wellKnownPath)
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	_, err = r.fetchConfig(ctx, configURL.String())
	return err
}

// Origins returns the enabled origins in sorted order.
func (r *Registry) Origins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	origins := make([]string, 0, len(r.origins))
	for origin := range r.origins {
		origins = append(origins, origin)
	}
	sort.Strings(origins)
	return origins
}

// fetchConfig retrieves and validates a configuration document. A failed
// fetch records a negative cache entry first, so repeated attempts against an
// unreachable origin stay offline for the cache window.
func (r *Registry) fetchConfig(ctx context.Context, configURL string) ([]Configuration, error) {
	body, err := r.fetcher.Fetch(ctx, configURL)
	if err != nil {
		if cacheErr := r.fetcher.CacheNegativeResult(configURL); cacheErr != nil {
			r.log.Warn().Str("url", configURL).Err(cacheErr).
				Msg("Could not cache negative fetch result")
		}
		return nil, err
	}
	cf, err := decodeConfig(configURL, body)
	if err != nil {
		return nil, err
	}
	if err := validateConfig(cf); err != nil {
		return nil, err
	}
	return cf.Registries, nil
}

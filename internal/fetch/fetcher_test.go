package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/importls/importls/internal/ierrors"
	"github.com/importls/importls/internal/logger"
)

func newTestFetcher(t *testing.T, location string) *Fetcher {
	t.Helper()
	f, err := New(location, logger.New("error", io.Discard))
	require.NoError(t, err)
	return f
}

func TestFetcher_Fetch(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`["a","b"]`))
	}))
	t.Cleanup(server.Close)

	f := newTestFetcher(t, t.TempDir())
	body, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, string(body))
	assert.Equal(t, int64(1), hits.Load())

	// Second call is served from the memory layer.
	body, err = f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, string(body))
	assert.Equal(t, int64(1), hits.Load())
}

func TestFetcher_DiskCacheHonorsMaxAge(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Cache-Control", "max-age=3600")
		_, _ = w.Write([]byte("cached"))
	}))
	t.Cleanup(server.Close)

	location := t.TempDir()
	f := newTestFetcher(t, location)
	_, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	// A fresh fetcher over the same location has a cold memory layer but
	// finds the fresh disk entry.
	f2 := newTestFetcher(t, location)
	body, err := f2.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "cached", string(body))
	assert.Equal(t, int64(1), hits.Load())
}

func TestFetcher_StaleResponseRefetched(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("no cache headers"))
	}))
	t.Cleanup(server.Close)

	location := t.TempDir()
	f := newTestFetcher(t, location)
	_, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	// Without Cache-Control the disk entry is never fresh.
	f2 := newTestFetcher(t, location)
	_, err = f2.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, int64(2), hits.Load())
}

func TestFetcher_ClientErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	f := newTestFetcher(t, t.TempDir())
	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	var fetchErr *ierrors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, server.URL, fetchErr.URL)
	assert.Equal(t, int64(1), hits.Load())
}

func TestFetcher_ServerErrorIsRetried(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	t.Cleanup(server.Close)

	f := newTestFetcher(t, t.TempDir())
	body, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, int64(2), hits.Load())
}

func TestFetcher_CacheNegativeResult(t *testing.T) {
	f := newTestFetcher(t, t.TempDir())
	url := "http://127.0.0.1:1/unreachable"

	require.NoError(t, f.CacheNegativeResult(url))

	// The recorded entry is empty and fresh for a week, so the fetch
	// succeeds offline with no body.
	body, err := f.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestEntryMeta_Fresh(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		meta entryMeta
		want bool
	}{
		{
			name: "within max-age",
			meta: entryMeta{
				Headers:   map[string]string{"cache-control": "max-age=3600"},
				FetchedAt: now.Add(-time.Minute),
			},
			want: true,
		},
		{
			name: "past max-age",
			meta: entryMeta{
				Headers:   map[string]string{"cache-control": "max-age=60"},
				FetchedAt: now.Add(-time.Hour),
			},
			want: false,
		},
		{
			name: "immutable negative entry",
			meta: entryMeta{
				Headers:   map[string]string{"cache-control": negativeCacheControl},
				FetchedAt: now.Add(-24 * time.Hour),
			},
			want: true,
		},
		{
			name: "no cache control",
			meta: entryMeta{FetchedAt: now},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.fresh(now))
		})
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	c, err := newDiskCache(t.TempDir())
	require.NoError(t, err)

	_, _, ok := c.get("https://example.com/missing")
	assert.False(t, ok)

	headers := map[string]string{"Cache-Control": "max-age=60", "Content-Type": "application/json"}
	require.NoError(t, c.set("https://example.com/doc", headers, []byte("body")))

	body, meta, ok := c.get("https://example.com/doc")
	require.True(t, ok)
	assert.Equal(t, "body", string(body))
	assert.Equal(t, "https://example.com/doc", meta.URL)
	// Header names are normalized for case-insensitive freshness checks.
	assert.Equal(t, "max-age=60", meta.Headers["cache-control"])
	assert.True(t, meta.fresh(time.Now()))
}

package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// entryMeta is the sidecar metadata persisted next to a cached response body.
type entryMeta struct {
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// fresh reports whether the entry is still usable without revalidation,
// based on the max-age directive of its Cache-Control header.
func (m *entryMeta) fresh(now time.Time) bool {
	cc := m.Headers["cache-control"]
	if cc == "" {
		return false
	}
	for _, directive := range strings.Split(cc, ",") {
		directive = strings.TrimSpace(directive)
		if !strings.HasPrefix(directive, "max-age=") {
			continue
		}
		seconds, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
		if err != nil {
			return false
		}
		return now.Sub(m.FetchedAt) < time.Duration(seconds)*time.Second
	}
	return false
}

// diskCache persists fetched response bodies under a location directory,
// keyed by the SHA-256 of the URL.
type diskCache struct {
	location string
	mu       sync.RWMutex
}

func newDiskCache(location string) (*diskCache, error) {
	if err := os.MkdirAll(location, 0755); err != nil {
		return nil, err
	}
	return &diskCache{location: location}, nil
}

func (c *diskCache) paths(url string) (body, meta string) {
	sum := sha256.Sum256([]byte(url))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(c.location, name),
		filepath.Join(c.location, name+".meta.json")
}

// get reads a cached entry. The boolean is false when no entry exists.
func (c *diskCache) get(url string) ([]byte, *entryMeta, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bodyPath, metaPath := c.paths(url)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, nil, false
	}
	var meta entryMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, nil, false
	}
	body, err := os.ReadFile(bodyPath)
	if err != nil {
		return nil, nil, false
	}
	return body, &meta, true
}

// set stores a response body with its headers. Header names are stored
// lowercased so freshness checks are case-insensitive.
func (c *diskCache) set(url string, headers map[string]string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	normalized := make(map[string]string, len(headers))
	for name, value := range headers {
		normalized[strings.ToLower(name)] = value
	}
	meta := entryMeta{
		URL:       url,
		Headers:   normalized,
		FetchedAt: time.Now(),
	}
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}

	bodyPath, metaPath := c.paths(url)
	if err := os.WriteFile(bodyPath, body, 0600); err != nil {
		return err
	}
	return os.WriteFile(metaPath, data, 0600)
}

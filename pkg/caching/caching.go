// Package caching stores fetched page markup on disk so repeat runs over
// the same reading list do not hit the network again.
package caching

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a file-per-page cache keyed by URL. A TTL of zero or less
// means entries never expire.
type Cache struct {
	dir string
	ttl time.Duration
}

// NewCache opens a cache rooted at dir, creating it if needed.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// entryPath hashes the URL so any URL maps to a safe filename.
func (c *Cache) entryPath(url string) string {
	hash := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, fmt.Sprintf("%x.html", hash))
}

// Get returns the cached markup for url and true on a fresh hit.
func (c *Cache) Get(url string) ([]byte, bool) {
	path := c.entryPath(url)

	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores the markup for url, replacing any previous entry.
func (c *Cache) Set(url string, markup []byte) error {
	if err := os.WriteFile(c.entryPath(url), markup, 0644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

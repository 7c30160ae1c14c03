package agent

import (
	"context"
	"crypto/sha256"
	"io"
	"strconv"
	"sync"
	"time"
)

// CachedClient memoizes completions for identical requests. Long-running
// callers such as the file watcher otherwise repeat the same request every
// time an editor touches an unchanged manuscript.
type CachedClient struct {
	inner   CompletionClient
	ttl     time.Duration
	maxSize int

	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
}

type cacheKey [sha256.Size]byte

type cacheEntry struct {
	completion string
	storedAt   time.Time
}

// NewCachedClient wraps inner with an in-memory completion cache. Entries
// expire after ttl; when maxSize is reached the oldest entry is evicted.
func NewCachedClient(inner CompletionClient, ttl time.Duration, maxSize int) *CachedClient {
	if maxSize <= 0 {
		maxSize = 64
	}
	return &CachedClient{
		inner:   inner,
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[cacheKey]cacheEntry),
	}
}

func (c *CachedClient) Complete(ctx context.Context, system, prompt string, maxOutputTokens int) (string, error) {
	key := completionKey(system, prompt, maxOutputTokens)
	if out, ok := c.lookup(key); ok {
		return out, nil
	}

	out, err := c.inner.Complete(ctx, system, prompt, maxOutputTokens)
	if err != nil {
		return "", err
	}
	c.store(key, out)
	return out, nil
}

func (c *CachedClient) lookup(key cacheKey) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if time.Since(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return entry.completion, true
}

func (c *CachedClient) store(key cacheKey, completion string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = cacheEntry{completion: completion, storedAt: time.Now()}
}

// evictOldest removes the stalest entry. Caller holds the lock.
func (c *CachedClient) evictOldest() {
	var (
		oldestKey cacheKey
		oldestAt  time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.storedAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

func completionKey(system, prompt string, maxOutputTokens int) cacheKey {
	h := sha256.New()
	io.WriteString(h, system)
	h.Write([]byte{0})
	io.WriteString(h, prompt)
	h.Write([]byte{0})
	io.WriteString(h, strconv.Itoa(maxOutputTokens))

	var key cacheKey
	copy(key[:], h.Sum(nil))
	return key
}

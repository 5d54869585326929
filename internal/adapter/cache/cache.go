// Package cache implements the in-process word cache that sits in front of
// the persistent store. Entries expire a fixed time after they were written;
// expiry is checked lazily on Get. The number of entries is capped and the
// least recently used entry is evicted first.
package cache

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tannibunni/dramaword-backend/internal/domain"
)

type entry struct {
	record    domain.WordRecord
	writtenAt time.Time
}

// WordCache maps normalized terms to word records.
type WordCache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, entry]
	ttl     time.Duration
	now     func() time.Time
	log     *slog.Logger
}

// New creates a WordCache holding at most maxEntries records for ttl each.
func New(ttl time.Duration, maxEntries int, logger *slog.Logger) (*WordCache, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache: ttl must be positive (got %v)", ttl)
	}
	entries, err := lru.New[string, entry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &WordCache{
		entries: entries,
		ttl:     ttl,
		now:     time.Now,
		log:     logger.With("adapter", "cache"),
	}, nil
}

// Get returns the cached record for term. An expired entry is removed and
// reported as a miss.
func (c *WordCache) Get(term string) (*domain.WordRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(term)
	if !ok {
		return nil, false
	}
	if c.expired(e) {
		c.entries.Remove(term)
		c.log.Debug("cache entry expired", slog.String("term", term))
		return nil, false
	}

	rec := cloneRecord(e.record)
	return &rec, true
}

// Put stores rec under its term, replacing any previous entry and
// restarting its lifetime.
func (c *WordCache) Put(rec domain.WordRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if evicted := c.entries.Add(rec.Term, entry{record: cloneRecord(rec), writtenAt: c.now()}); evicted {
		c.log.Debug("cache evicted oldest entry", slog.Int("size", c.entries.Len()))
	}
}

// InvalidateExpired removes every expired entry and returns how many were removed.
func (c *WordCache) InvalidateExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, term := range c.entries.Keys() {
		e, ok := c.entries.Peek(term)
		if ok && c.expired(e) {
			c.entries.Remove(term)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, expired ones included.
func (c *WordCache) Len() int {
	return c.entries.Len()
}

func (c *WordCache) expired(e entry) bool {
	return c.now().Sub(e.writtenAt) > c.ttl
}

func cloneRecord(r domain.WordRecord) domain.WordRecord {
	r.Meanings = slices.Clone(r.Meanings)
	r.Translations = slices.Clone(r.Translations)
	r.Derivatives = slices.Clone(r.Derivatives)
	r.Synonyms = slices.Clone(r.Synonyms)
	return r
}

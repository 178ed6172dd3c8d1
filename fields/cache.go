package fields

import (
	"strings"
	"time"
)

type cacheEntry struct {
	rec described
	at  time.Time
}

// cache memoizes per-element describe results by structural key for a short
// TTL, so repeated invocations against an unchanged page skip the describe
// round-trip. Element handles are never cached; they are re-bound on every
// detection pass. Accessed from the single extraction goroutine only.
type cache struct {
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// cacheKey derives the structural identity of an element.
func cacheKey(tag, typ, id, name, class string) string {
	return strings.Join([]string{tag, typ, id, name, class}, "|")
}

// cacheable reports whether an element of the given type may be memoized.
// Radio members share their group's name and rarely carry an id or class,
// so the structural key cannot tell them apart; they are described fresh
// on every pass.
func cacheable(typ string) bool {
	return typ != "radio"
}

func (c *cache) get(key string) (described, bool) {
	e, ok := c.entries[key]
	if !ok {
		return described{}, false
	}
	if c.now().Sub(e.at) > c.ttl {
		delete(c.entries, key)
		return described{}, false
	}
	return e.rec, true
}

func (c *cache) put(key string, rec described) {
	c.entries[key] = cacheEntry{rec: rec, at: c.now()}
}

// purge drops expired entries. Called opportunistically at the start of each
// extraction pass.
func (c *cache) purge() {
	cutoff := c.now().Add(-c.ttl)
	for k, e := range c.entries {
		if e.at.Before(cutoff) {
			delete(c.entries, k)
		}
	}
}

// Invalidate empties the cache, e.g. after a document-changed signal.
func (c *cache) invalidate() {
	c.entries = make(map[string]cacheEntry)
}

package folio

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// listingSource is the subset of Store the listing cache reads from.
type listingSource interface {
	GetAllPosts(ctx context.Context, locale Locale) ([]Post, error)
	ListTags(ctx context.Context, locale Locale) ([]string, error)
}

type listing struct {
	posts   []Post
	tags    []string
	fetched time.Time
}

// ListCache is an in-memory, per-locale cache of published post listings and
// tags with a TTL. It backs index pages, feeds and the sitemap. Single posts
// are never served from it.
type ListCache struct {
	mu      sync.RWMutex
	entries map[Locale]*listing
	ttl     time.Duration
	src     listingSource
}

// NewListCache creates a ListCache backed by src.
func NewListCache(src listingSource, ttl time.Duration) *ListCache {
	return &ListCache{src: src, ttl: ttl, entries: make(map[Locale]*listing)}
}

func (c *ListCache) valid(e *listing) bool {
	return e != nil && time.Since(e.fetched) < c.ttl
}

// Invalidate clears every locale so the next read triggers a fresh load.
func (c *ListCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[Locale]*listing)
	c.mu.Unlock()
}

// ensureLoaded returns the cached listing for locale after ensuring it is
// fresh. It tries a read lock first; only takes a write lock if a reload is
// needed.
func (c *ListCache) ensureLoaded(ctx context.Context, locale Locale) (*listing, error) {
	c.mu.RLock()
	e := c.entries[locale]
	if c.valid(e) {
		c.mu.RUnlock()
		return e, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.entries[locale]; c.valid(e) {
		return e, nil
	}
	posts, err := c.src.GetAllPosts(ctx, locale)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrStoreUnavailable, locale, err)
	}
	tags, err := c.src.ListTags(ctx, locale)
	if err != nil {
		return nil, fmt.Errorf("%w: tags %s: %w", ErrStoreUnavailable, locale, err)
	}
	e = &listing{posts: posts, tags: tags, fetched: time.Now()}
	c.entries[locale] = e
	return e, nil
}

// ListPosts returns published posts of locale, optionally filtered by tag.
func (c *ListCache) ListPosts(ctx context.Context, locale Locale, tag string) ([]Post, error) {
	if !locale.Valid() {
		return nil, ErrNotFound
	}
	e, err := c.ensureLoaded(ctx, locale)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return e.posts, nil
	}
	normalized := normalizeTag(tag)
	var filtered []Post
	for _, p := range e.posts {
		for _, t := range p.Tags {
			if normalizeTag(t) == normalized {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// ListTags returns all unique tags of published posts in locale.
func (c *ListCache) ListTags(ctx context.Context, locale Locale) ([]string, error) {
	if !locale.Valid() {
		return nil, ErrNotFound
	}
	e, err := c.ensureLoaded(ctx, locale)
	if err != nil {
		return nil, err
	}
	return e.tags, nil
}

package contentkit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// TaxonomyCache is an in-memory, per-group cache of the category and tag
// labels offered by the editor's pickers.
type TaxonomyCache struct {
	mu      sync.RWMutex
	entries map[string]taxonomyEntry
	ttl     time.Duration
	repo    Repository
}

type taxonomyEntry struct {
	categories []string
	tags       []string
	fetched    time.Time
}

// NewTaxonomyCache creates a TaxonomyCache backed by repo.
func NewTaxonomyCache(repo Repository, ttl time.Duration) *TaxonomyCache {
	return &TaxonomyCache{repo: repo, ttl: ttl, entries: make(map[string]taxonomyEntry)}
}

func (c *TaxonomyCache) valid(group string) (taxonomyEntry, bool) {
	e, ok := c.entries[group]
	return e, ok && time.Since(e.fetched) < c.ttl
}

// Invalidate drops the cached labels of group so the next read reloads them.
func (c *TaxonomyCache) Invalidate(group string) {
	c.mu.Lock()
	delete(c.entries, group)
	c.mu.Unlock()
}

// Get returns the categories and tags used in group. It tries a read lock
// first and only takes the write lock when a reload is needed.
func (c *TaxonomyCache) Get(ctx context.Context, group string) (categories, tags []string, err error) {
	c.mu.RLock()
	if e, ok := c.valid(group); ok {
		c.mu.RUnlock()
		return e.categories, e.tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.valid(group); ok {
		return e.categories, e.tags, nil
	}

	var e taxonomyEntry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		e.categories, err = c.repo.AllCategories(gctx, group)
		return err
	})
	g.Go(func() error {
		var err error
		e.tags, err = c.repo.AllTags(gctx, group)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	e.fetched = time.Now()
	c.entries[group] = e
	return e.categories, e.tags, nil
}

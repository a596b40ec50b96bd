package pubsite

import (
	"context"
	"sync"
	"time"
)

// PostCache is an in-memory cache of published posts and categories with a
// TTL. The preview server reads through it and the watcher invalidates it
// after every rebuild.
type PostCache struct {
	mu         sync.RWMutex
	posts      []Post
	categories []Category
	fetched    time.Time
	ttl        time.Duration
	store      *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.categories = nil
	c.mu.Unlock()
}

func (c *PostCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts(ctx, PostFilter{}, 0, 0)
	if err != nil {
		return err
	}
	cats, err := c.store.ListCategories(ctx)
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []Post{}
	}
	c.posts = posts
	c.categories = cats
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached posts and categories after ensuring the cache
// is fresh. It tries a read lock first and only takes the write lock to reload.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]Post, []Category, error) {
	c.mu.RLock()
	if c.valid() {
		posts, cats := c.posts, c.categories
		c.mu.RUnlock()
		return posts, cats, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, err
	}
	return c.posts, c.categories, nil
}

// ListPosts returns published posts, date descending.
func (c *PostCache) ListPosts(ctx context.Context) ([]Post, error) {
	posts, _, err := c.ensureLoaded(ctx)
	return posts, err
}

// ListCategories returns every category in declaration order.
func (c *PostCache) ListCategories(ctx context.Context) ([]Category, error) {
	_, cats, err := c.ensureLoaded(ctx)
	return cats, err
}

// GetPost returns a single published post by slug from the cache.
func (c *PostCache) GetPost(ctx context.Context, slug string) (Post, error) {
	posts, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

// Siblings returns the published neighbours of slug from the cache, with the
// same ordering as Store.Siblings.
func (c *PostCache) Siblings(ctx context.Context, slug string) (older, newer *Post, err error) {
	posts, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, nil, err
	}
	older, newer, ok := siblingsOf(posts, slug)
	if !ok {
		return nil, nil, ErrNotFound
	}
	return older, newer, nil
}

// siblingsOf finds slug in date-descending posts and returns its neighbours.
func siblingsOf(posts []Post, slug string) (older, newer *Post, ok bool) {
	for i := range posts {
		if posts[i].Slug != slug {
			continue
		}
		if i+1 < len(posts) {
			older = &posts[i+1]
		}
		if i > 0 {
			newer = &posts[i-1]
		}
		return older, newer, true
	}
	return nil, nil, false
}

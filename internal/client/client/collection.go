package client

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/docdb/internal/client/cache"
	"github.com/dmitrijs2005/docdb/internal/client/cursor"
	"github.com/dmitrijs2005/docdb/internal/client/models"
	"github.com/dmitrijs2005/docdb/internal/common"
)

type Collection struct {
	db    *Database
	cache *cache.Cache
	name  string
	typ   models.CollectionType
	mu    sync.Mutex
}

func (c *Collection) Name() string                { return c.name }
func (c *Collection) Type() models.CollectionType { return c.typ }

// Document returns the document with key, from the cache when possible.
func (c *Collection) Document(ctx context.Context, key string) (models.Object, error) {
	c.mu.Lock()
	obj, ok := c.cache.Get(key)
	c.mu.Unlock()
	if ok {
		return obj, nil
	}

	path := c.db.base + common.DocumentPath + "/" + url.PathEscape(c.name) + "/" + url.PathEscape(key)
	resp, err := c.db.conn.exec.Execute(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	obj, err = models.Hydrate(c.typ, resp.Body)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache.Put(key, obj)
	c.mu.Unlock()
	return obj, nil
}

// Forget drops key from the cache. It fails with common.ErrCacheKey when the
// key is not cached.
func (c *Collection) Forget(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Delete(key)
}

// CacheChain lists cached keys from most to least recently used.
func (c *Collection) CacheChain() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Chain()
}

func (c *Collection) CacheStats() cache.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Stats()
}

// All iterates over every document of the collection.
func (c *Collection) All(ctx context.Context, qo cursor.QueryOptions, opts ...cursor.Option) (*cursor.Cursor, error) {
	return c.db.open(ctx, cursor.SimpleAll(c.name, c.db.withDefaults(qo)), opts)
}

// ByExample iterates over the documents whose attributes equal example.
func (c *Collection) ByExample(ctx context.Context, example map[string]any, qo cursor.QueryOptions, opts ...cursor.Option) (*cursor.Cursor, error) {
	return c.db.open(ctx, cursor.SimpleByExample(c.name, example, c.db.withDefaults(qo)), opts)
}

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/docdb/internal/client/cache"
	"github.com/dmitrijs2005/docdb/internal/client/cursor"
	"github.com/dmitrijs2005/docdb/internal/client/models"
	"github.com/dmitrijs2005/docdb/internal/common"
)

var _ cursor.Resolver = (*Database)(nil)

type Database struct {
	conn        *Connection
	registry    *models.Registry
	collections map[string]*Collection
	name        string
	base        string
	mu          sync.Mutex
}

func (d *Database) Name() string { return d.name }

// Register records the type of a collection so it is never looked up on the
// server.
func (d *Database) Register(name string, t models.CollectionType) {
	d.registry.Register(name, t)
}

type collectionInfo struct {
	Name string                `json:"name"`
	Type models.CollectionType `json:"type"`
}

// CollectionType returns the registered type of name, asking the server
// when it is not registered yet.
func (d *Database) CollectionType(ctx context.Context, name string) (models.CollectionType, error) {
	if t, ok := d.registry.Lookup(name); ok {
		return t, nil
	}

	resp, err := d.conn.exec.Execute(ctx, http.MethodGet, d.base+common.CollectionPath+"/"+url.PathEscape(name), nil, nil)
	if err != nil {
		return models.TypeUnknown, err
	}
	if err := resp.Err(); err != nil {
		return models.TypeUnknown, err
	}
	var info collectionInfo
	if err := resp.Decode(&info); err != nil {
		return models.TypeUnknown, err
	}
	if info.Type != models.TypeDocument && info.Type != models.TypeEdge {
		return models.TypeUnknown, fmt.Errorf("%w: collection %q has type %d", common.ErrDecoding, name, int(info.Type))
	}

	d.registry.Register(name, info.Type)
	d.conn.log.Debug(ctx, "collection type resolved", "database", d.name, "collection", name, "type", info.Type.String())
	return info.Type, nil
}

// Collection returns the handle of name. Handles are shared, so their
// document cache survives repeated lookups.
func (d *Database) Collection(ctx context.Context, name string) (*Collection, error) {
	d.mu.Lock()
	if c, ok := d.collections[name]; ok {
		d.mu.Unlock()
		return c, nil
	}
	d.mu.Unlock()

	t, err := d.CollectionType(ctx, name)
	if err != nil {
		return nil, err
	}
	docs, err := cache.New(d.conn.cacheCapacity, cache.WithMetrics(d.conn.metrics))
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.collections[name]; ok {
		return c, nil
	}
	c := &Collection{db: d, name: name, typ: t, cache: docs}
	d.collections[name] = c
	return c, nil
}

// Query runs an AQL query. A zero batch size takes the connection default.
func (d *Database) Query(ctx context.Context, aql string, qo cursor.QueryOptions, opts ...cursor.Option) (*cursor.Cursor, error) {
	return d.open(ctx, cursor.AQL(aql, d.withDefaults(qo)), opts)
}

func (d *Database) withDefaults(qo cursor.QueryOptions) cursor.QueryOptions {
	if qo.BatchSize == 0 {
		qo.BatchSize = d.conn.batchSize
	}
	return qo
}

func (d *Database) open(ctx context.Context, req cursor.Request, opts []cursor.Option) (*cursor.Cursor, error) {
	all := append([]cursor.Option{
		cursor.WithLogger(d.conn.log),
		cursor.WithMetrics(d.conn.metrics),
	}, opts...)
	return cursor.Open(ctx, d.conn.exec, d.base, req, d, all...)
}

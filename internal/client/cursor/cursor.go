// Package cursor streams query results batch by batch.
//
// A Cursor moves through four states: HasMore while the server holds further
// batches, FinalBatch while the last batch is being read, Exhausted once it
// is consumed, and Closed after Close. Reads are forward-only and a cursor
// cannot be rewound; issue the query again to iterate a second time.
package cursor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"

	"github.com/dmitrijs2005/docdb/internal/client/models"
	"github.com/dmitrijs2005/docdb/internal/client/session"
	"github.com/dmitrijs2005/docdb/internal/common"
	"github.com/dmitrijs2005/docdb/internal/logging"
	"github.com/dmitrijs2005/docdb/internal/metrics"
)

type State int

const (
	HasMore State = iota
	FinalBatch
	Exhausted
	Closed
)

func (s State) String() string {
	switch s {
	case HasMore:
		return "has-more"
	case FinalBatch:
		return "final-batch"
	case Exhausted:
		return "exhausted"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Resolver tells which kind of collection a document belongs to.
type Resolver interface {
	CollectionType(ctx context.Context, name string) (models.CollectionType, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, name string) (models.CollectionType, error)

func (f ResolverFunc) CollectionType(ctx context.Context, name string) (models.CollectionType, error) {
	return f(ctx, name)
}

// Entry is one result element. Object is nil for raw cursors.
type Entry struct {
	Object models.Object
	Raw    json.RawMessage
}

type Cursor struct {
	exec     session.Executor
	resolver Resolver
	log      logging.Logger
	metrics  *metrics.Metrics
	count    *int
	base     string
	id       string
	extra    json.RawMessage
	batch    []json.RawMessage
	objects  []models.Object
	pos      int
	hasMore  bool
	closed   bool
	raw      bool
}

type Option func(*Cursor)

// RawResults skips hydration; entries carry only the raw JSON.
func RawResults() Option {
	return func(c *Cursor) { c.raw = true }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Cursor) { c.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cursor) { c.metrics = m }
}

type batchResponse struct {
	Count   *int              `json:"count"`
	ID      string            `json:"id"`
	Extra   json.RawMessage   `json:"extra"`
	Result  []json.RawMessage `json:"result"`
	HasMore bool              `json:"hasMore"`
}

// Open sends req below base (a database prefix such as "/_db/app", or "")
// and returns a cursor positioned before the first element. A nil resolver
// hydrates every element as a plain document.
func Open(ctx context.Context, exec session.Executor, base string, req Request, resolver Resolver, opts ...Option) (*Cursor, error) {
	c := &Cursor{
		exec:     exec,
		resolver: resolver,
		base:     base,
		log:      logging.NewNop(),
		metrics:  metrics.NewUnregistered(),
	}
	for _, opt := range opts {
		opt(c)
	}

	resp, err := exec.Execute(ctx, req.Method, base+req.Path, req.Body, nil)
	if err != nil {
		return nil, err
	}
	br, err := decodeBatch(resp)
	if err != nil {
		return nil, err
	}
	if br.HasMore && br.ID == "" {
		return nil, &common.RequestError{
			Method:     resp.Method,
			URL:        resp.URL,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Err:        fmt.Errorf("%w: cursor has more results but no id", common.ErrDecoding),
		}
	}

	c.id = br.ID
	c.count = br.Count
	c.extra = br.Extra
	c.log = c.log.With("component", "cursor", "cursor_id", c.id)
	c.apply(br)
	return c, nil
}

func decodeBatch(resp *session.Response) (*batchResponse, error) {
	if err := resp.Err(); err != nil {
		return nil, err
	}
	var br batchResponse
	if err := resp.Decode(&br); err != nil {
		return nil, err
	}
	return &br, nil
}

func (c *Cursor) apply(br *batchResponse) {
	c.batch = br.Result
	c.objects = make([]models.Object, len(br.Result))
	c.hasMore = br.HasMore
	c.pos = 0
	c.metrics.CursorBatchesTotal.Inc()
}

func (c *Cursor) url() string {
	return c.base + common.CursorPath + "/" + c.id
}

// ID is the server-assigned cursor id, empty when the whole result fit in
// the first batch.
func (c *Cursor) ID() string { return c.id }

// Count is the total number of results, when the query asked for it.
func (c *Cursor) Count() (int, bool) {
	if c.count == nil {
		return 0, false
	}
	return *c.count, true
}

// Extra holds the query statistics returned with the first batch.
func (c *Cursor) Extra() json.RawMessage { return c.extra }

// BatchLen is the size of the current batch.
func (c *Cursor) BatchLen() int { return len(c.batch) }

func (c *Cursor) State() State {
	switch {
	case c.closed:
		return Closed
	case c.hasMore:
		return HasMore
	case c.pos < len(c.batch):
		return FinalBatch
	default:
		return Exhausted
	}
}

// NextBatch replaces the current batch with the next one from the server.
func (c *Cursor) NextBatch(ctx context.Context) error {
	if c.closed {
		return fmt.Errorf("%w: cursor is closed", common.ErrCursorState)
	}
	if !c.hasMore {
		return fmt.Errorf("%w: no more batches", common.ErrCursorState)
	}

	resp, err := c.exec.Execute(ctx, http.MethodPut, c.url(), nil, nil)
	if err != nil {
		return err
	}
	br, err := decodeBatch(resp)
	if err != nil {
		return err
	}
	c.apply(br)
	c.log.Debug(ctx, "cursor batch fetched", "size", len(br.Result), "has_more", br.HasMore)
	return nil
}

// Item returns element i of the current batch, hydrating it on first access.
// Once the cursor is exhausted no element can be read any more.
func (c *Cursor) Item(ctx context.Context, i int) (Entry, error) {
	switch c.State() {
	case Closed:
		return Entry{}, fmt.Errorf("%w: cursor is closed", common.ErrCursorState)
	case Exhausted:
		return Entry{}, fmt.Errorf("%w: cursor is exhausted", common.ErrCursorState)
	}
	if i < 0 || i >= len(c.batch) {
		return Entry{}, fmt.Errorf("%w: index %d outside batch of %d", common.ErrCursorState, i, len(c.batch))
	}

	raw := c.batch[i]
	if c.raw {
		return Entry{Raw: raw}, nil
	}
	if obj := c.objects[i]; obj != nil {
		return Entry{Raw: raw, Object: obj}, nil
	}

	obj, err := c.hydrate(ctx, raw)
	if err != nil {
		return Entry{}, fmt.Errorf("cursor item %d: %w", i, err)
	}
	c.objects[i] = obj
	return Entry{Raw: raw, Object: obj}, nil
}

func (c *Cursor) hydrate(ctx context.Context, raw json.RawMessage) (models.Object, error) {
	t := models.TypeDocument
	if c.resolver != nil {
		coll, err := models.CollectionOf(raw)
		if err != nil {
			return nil, err
		}
		if t, err = c.resolver.CollectionType(ctx, coll); err != nil {
			return nil, err
		}
	}
	return models.Hydrate(t, raw)
}

// Next returns the next element, fetching batches as needed. After the last
// element it returns common.ErrEndOfSequence without contacting the server.
func (c *Cursor) Next(ctx context.Context) (Entry, error) {
	if c.closed {
		return Entry{}, fmt.Errorf("%w: cursor is closed", common.ErrCursorState)
	}
	for c.pos >= len(c.batch) {
		if !c.hasMore {
			return Entry{}, common.ErrEndOfSequence
		}
		if err := c.NextBatch(ctx); err != nil {
			return Entry{}, err
		}
	}

	e, err := c.Item(ctx, c.pos)
	c.pos++
	return e, err
}

// All ranges over the remaining elements. Iteration stops after the first
// error, which is yielded with a zero Entry.
func (c *Cursor) All(ctx context.Context) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for {
			e, err := c.Next(ctx)
			if errors.Is(err, common.ErrEndOfSequence) {
				return
			}
			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the server-side cursor when it still exists. The cursor
// is closed afterwards even if the release fails.
func (c *Cursor) Close(ctx context.Context) error {
	if c.closed {
		return fmt.Errorf("%w: cursor already closed", common.ErrCursorState)
	}
	c.closed = true
	c.batch, c.objects = nil, nil

	if c.id == "" || !c.hasMore {
		return nil
	}
	resp, err := c.exec.Execute(ctx, http.MethodDelete, c.url(), nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		c.log.Debug(ctx, "cursor already released by the server")
		return nil
	}
	return resp.Err()
}

package cursor

import (
	"net/http"

	"github.com/dmitrijs2005/docdb/internal/common"
)

// Request is the call that creates a cursor on the server.
type Request struct {
	Body   any
	Method string
	Path   string
}

// QueryOptions are the cursor creation parameters shared by every query
// kind. Zero values are omitted from the request body.
type QueryOptions struct {
	BindVars  map[string]any
	Options   map[string]any
	BatchSize int
	Count     bool
	FullCount bool
}

type createBody struct {
	BindVars   map[string]any `json:"bindVars,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
	Example    map[string]any `json:"example,omitempty"`
	Query      string         `json:"query,omitempty"`
	Collection string         `json:"collection,omitempty"`
	BatchSize  int            `json:"batchSize,omitempty"`
	Count      bool           `json:"count,omitempty"`
	FullCount  bool           `json:"fullCount,omitempty"`
}

func (o QueryOptions) body() createBody {
	return createBody{
		BindVars:  o.BindVars,
		Options:   o.Options,
		BatchSize: o.BatchSize,
		Count:     o.Count,
		FullCount: o.FullCount,
	}
}

// AQL creates a query cursor.
func AQL(query string, opts QueryOptions) Request {
	b := opts.body()
	b.Query = query
	return Request{Method: http.MethodPost, Path: common.CursorPath, Body: b}
}

// SimpleAll iterates over every document of collection.
func SimpleAll(collection string, opts QueryOptions) Request {
	b := opts.body()
	b.Collection = collection
	return Request{Method: http.MethodPut, Path: common.SimpleAllPath, Body: b}
}

// SimpleByExample iterates over the documents of collection matching
// example attribute by attribute.
func SimpleByExample(collection string, example map[string]any, opts QueryOptions) Request {
	b := opts.body()
	b.Collection = collection
	b.Example = example
	return Request{Method: http.MethodPut, Path: common.SimpleByExPath, Body: b}
}

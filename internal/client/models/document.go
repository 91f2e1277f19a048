// Package models defines the domain objects produced by hydration: plain
// documents and edges, plus the static collection-type registry used to
// route raw JSON to the right constructor.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/docdb/internal/common"
)

// CollectionType mirrors the numeric collection type of the server API.
type CollectionType int

const (
	TypeUnknown  CollectionType = 0
	TypeDocument CollectionType = 2
	TypeEdge     CollectionType = 3
)

func (t CollectionType) String() string {
	switch t {
	case TypeDocument:
		return "document"
	case TypeEdge:
		return "edge"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Object is a hydrated document or edge.
type Object interface {
	// Handle is the "collection/key" identifier.
	Handle() string
	Collection() string
	Key() string
	Rev() string
	// Fields holds every attribute, system ones included.
	Fields() map[string]any
	Raw() json.RawMessage
}

type Document struct {
	fields     map[string]any
	collection string
	key        string
	rev        string
	raw        json.RawMessage
}

func (d *Document) Handle() string         { return d.collection + "/" + d.key }
func (d *Document) Collection() string     { return d.collection }
func (d *Document) Key() string            { return d.key }
func (d *Document) Rev() string            { return d.rev }
func (d *Document) Fields() map[string]any { return d.fields }
func (d *Document) Raw() json.RawMessage   { return d.raw }

// Get returns a single attribute.
func (d *Document) Get(name string) (any, bool) {
	v, ok := d.fields[name]
	return v, ok
}

// Edge is a document connecting two other documents.
type Edge struct {
	Document
	from string
	to   string
}

func (e *Edge) From() string { return e.from }
func (e *Edge) To() string   { return e.to }

// SplitHandle splits "collection/key".
func SplitHandle(handle string) (string, string, error) {
	coll, key, ok := strings.Cut(handle, "/")
	if !ok || coll == "" || key == "" {
		return "", "", fmt.Errorf("%w: invalid document handle %q", common.ErrDecoding, handle)
	}
	return coll, key, nil
}

// CollectionOf returns the collection name embedded in the _id of raw.
func CollectionOf(raw json.RawMessage) (string, error) {
	var head struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", fmt.Errorf("%w: not a document: %v", common.ErrDecoding, err)
	}
	if head.ID == "" {
		return "", fmt.Errorf("%w: element has no _id", common.ErrDecoding)
	}
	coll, _, err := SplitHandle(head.ID)
	return coll, err
}

// Hydrate builds a Document or an Edge from raw, depending on t.
func Hydrate(t CollectionType, raw json.RawMessage) (Object, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: not a document: %v", common.ErrDecoding, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: not a document: null", common.ErrDecoding)
	}

	id, _ := fields["_id"].(string)
	coll, key, err := SplitHandle(id)
	if err != nil {
		return nil, err
	}
	if k, ok := fields["_key"].(string); ok && k != key {
		return nil, fmt.Errorf("%w: _key %q does not match _id %q", common.ErrDecoding, k, id)
	}
	rev, _ := fields["_rev"].(string)

	doc := Document{
		fields:     fields,
		collection: coll,
		key:        key,
		rev:        rev,
		raw:        append(json.RawMessage(nil), raw...),
	}

	switch t {
	case TypeDocument:
		return &doc, nil
	case TypeEdge:
		from, _ := fields["_from"].(string)
		to, _ := fields["_to"].(string)
		if from == "" || to == "" {
			return nil, fmt.Errorf("%w: edge %q lacks _from/_to", common.ErrDecoding, id)
		}
		return &Edge{Document: doc, from: from, to: to}, nil
	default:
		return nil, fmt.Errorf("%w: %w: %s", common.ErrDecoding, ErrUnknownType, t)
	}
}

var ErrUnknownType = errors.New("unknown collection type")

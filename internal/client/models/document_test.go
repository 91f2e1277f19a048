package models

import (
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/docdb/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrate_Document(t *testing.T) {
	raw := json.RawMessage(`{"_id":"users/ann","_key":"ann","_rev":"_h1","name":"Ann","age":31}`)

	obj, err := Hydrate(TypeDocument, raw)
	require.NoError(t, err)

	doc, ok := obj.(*Document)
	require.True(t, ok)
	assert.Equal(t, "users/ann", doc.Handle())
	assert.Equal(t, "users", doc.Collection())
	assert.Equal(t, "ann", doc.Key())
	assert.Equal(t, "_h1", doc.Rev())
	name, ok := doc.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Ann", name)
	assert.JSONEq(t, string(raw), string(doc.Raw()))
}

func TestHydrate_Edge(t *testing.T) {
	raw := json.RawMessage(`{"_id":"knows/1","_key":"1","_from":"users/ann","_to":"users/bob"}`)

	obj, err := Hydrate(TypeEdge, raw)
	require.NoError(t, err)

	e, ok := obj.(*Edge)
	require.True(t, ok)
	assert.Equal(t, "users/ann", e.From())
	assert.Equal(t, "users/bob", e.To())
	assert.Equal(t, "knows/1", e.Handle())
}

func TestHydrate_Malformed(t *testing.T) {
	tests := []struct {
		name string
		t    CollectionType
		raw  string
	}{
		{name: "scalar", t: TypeDocument, raw: `42`},
		{name: "null", t: TypeDocument, raw: `null`},
		{name: "array", t: TypeDocument, raw: `[1]`},
		{name: "no id", t: TypeDocument, raw: `{"name":"x"}`},
		{name: "bad id", t: TypeDocument, raw: `{"_id":"nokey"}`},
		{name: "key mismatch", t: TypeDocument, raw: `{"_id":"c/a","_key":"b"}`},
		{name: "edge without endpoints", t: TypeEdge, raw: `{"_id":"knows/1"}`},
		{name: "unknown type", t: TypeUnknown, raw: `{"_id":"c/a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Hydrate(tt.t, json.RawMessage(tt.raw))
			require.ErrorIs(t, err, common.ErrDecoding)
		})
	}
}

func TestCollectionOf(t *testing.T) {
	coll, err := CollectionOf(json.RawMessage(`{"_id":"users/ann"}`))
	require.NoError(t, err)
	assert.Equal(t, "users", coll)

	_, err = CollectionOf(json.RawMessage(`"users/ann"`))
	require.ErrorIs(t, err, common.ErrDecoding)

	_, err = CollectionOf(json.RawMessage(`{"name":"x"}`))
	require.ErrorIs(t, err, common.ErrDecoding)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(map[string]CollectionType{"users": TypeDocument})
	r.Register("knows", TypeEdge)

	got, ok := r.Lookup("users")
	require.True(t, ok)
	assert.Equal(t, TypeDocument, got)

	got, ok = r.Lookup("knows")
	require.True(t, ok)
	assert.Equal(t, TypeEdge, got)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestCollectionType_String(t *testing.T) {
	assert.Equal(t, "document", TypeDocument.String())
	assert.Equal(t, "edge", TypeEdge.String())
	assert.Equal(t, "unknown(7)", CollectionType(7).String())
}

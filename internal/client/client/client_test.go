package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/docdb/internal/client/auth"
	"github.com/dmitrijs2005/docdb/internal/client/config"
	"github.com/dmitrijs2005/docdb/internal/client/cursor"
	"github.com/dmitrijs2005/docdb/internal/client/models"
	"github.com/dmitrijs2005/docdb/internal/common"
	"github.com/dmitrijs2005/docdb/internal/metrics"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*************
 * fake cluster
 *************/

type cluster struct {
	*httptest.Server
	logins      atomic.Int32
	docGets     atomic.Int32
	collLookups atomic.Int32
	lastAuth    atomic.Value
	lastQuery   atomic.Value
}

var documents = map[string]string{
	"users/ann": `{"_id":"users/ann","_key":"ann","_rev":"_r1","name":"Ann"}`,
	"users/bob": `{"_id":"users/bob","_key":"bob","_rev":"_r2","name":"Bob"}`,
	"knows/1":   `{"_id":"knows/1","_key":"1","_from":"users/ann","_to":"users/bob"}`,
}

var collectionTypes = map[string]int{"users": 2, "knows": 3}

func newCluster(t *testing.T) *cluster {
	t.Helper()
	cl := &cluster{}
	cl.Server = httptest.NewServer(http.HandlerFunc(cl.handle))
	t.Cleanup(cl.Close)
	return cl
}

func writeError(w http.ResponseWriter, code, num int, msg string) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": true, "code": code, "errorNum": num, "errorMessage": msg})
}

func (cl *cluster) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == common.AuthPath {
		cl.logins.Add(1)
		tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iat": time.Now().Unix(),
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("k"))
		_ = json.NewEncoder(w).Encode(map[string]string{"jwt": tok})
		return
	}
	cl.lastAuth.Store(r.Header.Get("Authorization"))

	if r.URL.Path == common.VersionPath {
		_, _ = w.Write([]byte(`{"server":"docdb","version":"3.11.4","license":"community"}`))
		return
	}

	path, ok := strings.CutPrefix(r.URL.Path, "/_db/app")
	if !ok {
		writeError(w, http.StatusNotFound, 1228, "database not found")
		return
	}

	switch {
	case strings.HasPrefix(path, common.CollectionPath+"/"):
		cl.collLookups.Add(1)
		name := strings.TrimPrefix(path, common.CollectionPath+"/")
		typ, ok := collectionTypes[name]
		if !ok {
			writeError(w, http.StatusNotFound, 1203, "collection or view not found")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"name": name, "type": typ})

	case strings.HasPrefix(path, common.DocumentPath+"/"):
		cl.docGets.Add(1)
		doc, ok := documents[strings.TrimPrefix(path, common.DocumentPath+"/")]
		if !ok {
			writeError(w, http.StatusNotFound, 1202, "document not found")
			return
		}
		_, _ = w.Write([]byte(doc))

	case path == common.CursorPath || path == common.SimpleAllPath || path == common.SimpleByExPath:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		cl.lastQuery.Store(body)
		_, _ = w.Write([]byte(`{"result":[` + documents["users/ann"] + `,` + documents["knows/1"] + `],"hasMore":false,"count":2,"error":false}`))

	default:
		writeError(w, http.StatusNotFound, 404, "unknown path")
	}
}

func testConfig(url, mode string) *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Endpoints = []string{url}
	cfg.AuthMode = mode
	cfg.Password = "secret"
	cfg.MaxRetries = 0
	cfg.RequestTimeout = 2 * time.Second
	cfg.CacheCapacity = 2
	cfg.BatchSize = 10
	return cfg
}

func connect(t *testing.T, url, mode string) *Connection {
	t.Helper()
	conn, err := NewConnection(testConfig(url, mode))
	require.NoError(t, err)
	return conn
}

/*************
 * tests
 *************/

func TestConnection_VersionWithJWT(t *testing.T) {
	cl := newCluster(t)
	conn := connect(t, cl.URL, config.AuthJWT)

	v, err := conn.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, VersionInfo{Server: "docdb", Version: "3.11.4", License: "community"}, v)
	assert.EqualValues(t, 1, cl.logins.Load())
	assert.True(t, strings.HasPrefix(cl.lastAuth.Load().(string), "Bearer "))

	_, ok := conn.Provider().(*auth.JWT)
	assert.True(t, ok)
}

func TestConnection_BasicAndNone(t *testing.T) {
	cl := newCluster(t)

	_, err := connect(t, cl.URL, config.AuthBasic).Version(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cl.lastAuth.Load().(string), "Basic "))

	conn := connect(t, cl.URL, config.AuthNone)
	assert.Nil(t, conn.Provider())
	_, err = conn.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", cl.lastAuth.Load())
	assert.Zero(t, cl.logins.Load())
}

func TestConnection_MetricsOnCallerRegistry(t *testing.T) {
	cl := newCluster(t)
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	conn, err := NewConnection(testConfig(cl.URL, config.AuthJWT), WithMetrics(m))
	require.NoError(t, err)
	_, err = conn.Version(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthRefreshesTotal))
	n, err := testutil.GatherAndCount(reg, "docdb_client_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewConnection_InvalidConfig(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1", config.AuthJWT)
	cfg.Endpoints = nil
	_, err := NewConnection(cfg)
	require.Error(t, err)
}

func TestCollection_DocumentIsCached(t *testing.T) {
	cl := newCluster(t)
	db := connect(t, cl.URL, config.AuthNone).Database("app")
	ctx := context.Background()

	users, err := db.Collection(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, models.TypeDocument, users.Type())

	ann, err := users.Document(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, "users/ann", ann.Handle())
	assert.Equal(t, "_r1", ann.Rev())

	again, err := users.Document(ctx, "ann")
	require.NoError(t, err)
	assert.Same(t, ann, again)
	assert.EqualValues(t, 1, cl.docGets.Load())

	_, err = users.Document(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "ann"}, users.CacheChain())
	assert.EqualValues(t, 1, users.CacheStats().Hits)

	require.NoError(t, users.Forget("ann"))
	require.ErrorIs(t, users.Forget("ann"), common.ErrCacheKey)
	assert.Equal(t, []string{"bob"}, users.CacheChain())

	// Handles are shared, so is their cache.
	same, err := db.Collection(ctx, "users")
	require.NoError(t, err)
	assert.Same(t, users, same)
	assert.EqualValues(t, 1, cl.collLookups.Load())
}

func TestCollection_MissingDocument(t *testing.T) {
	cl := newCluster(t)
	db := connect(t, cl.URL, config.AuthNone).Database("app")
	ctx := context.Background()

	users, err := db.Collection(ctx, "users")
	require.NoError(t, err)

	_, err = users.Document(ctx, "zed")
	require.ErrorIs(t, err, common.ErrServer)
	var re *common.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
	assert.Empty(t, users.CacheChain())
}

func TestDatabase_RegisteredTypesSkipLookup(t *testing.T) {
	cl := newCluster(t)
	db := connect(t, cl.URL, config.AuthNone).Database("app")
	db.Register("knows", models.TypeEdge)
	ctx := context.Background()

	knows, err := db.Collection(ctx, "knows")
	require.NoError(t, err)
	assert.Zero(t, cl.collLookups.Load())

	obj, err := knows.Document(ctx, "1")
	require.NoError(t, err)
	edge, ok := obj.(*models.Edge)
	require.True(t, ok)
	assert.Equal(t, "users/ann", edge.From())
}

func TestDatabase_UnknownCollection(t *testing.T) {
	cl := newCluster(t)
	db := connect(t, cl.URL, config.AuthNone).Database("app")

	_, err := db.Collection(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrServer)
}

func TestDatabase_QueryHydratesMixedResults(t *testing.T) {
	cl := newCluster(t)
	db := connect(t, cl.URL, config.AuthNone).Database("app")
	ctx := context.Background()

	cur, err := db.Query(ctx, "FOR x IN union RETURN x", cursor.QueryOptions{Count: true})
	require.NoError(t, err)

	var kinds []string
	for e, err := range cur.All(ctx) {
		require.NoError(t, err)
		switch e.Object.(type) {
		case *models.Edge:
			kinds = append(kinds, "edge")
		case *models.Document:
			kinds = append(kinds, "document")
		}
	}
	assert.Equal(t, []string{"document", "edge"}, kinds)

	body := cl.lastQuery.Load().(map[string]any)
	assert.EqualValues(t, 10, body["batchSize"], "connection batch size applies when none is given")
	assert.Equal(t, "FOR x IN union RETURN x", body["query"])
}

func TestCollection_SimpleQueries(t *testing.T) {
	cl := newCluster(t)
	db := connect(t, cl.URL, config.AuthNone).Database("app")
	ctx := context.Background()

	users, err := db.Collection(ctx, "users")
	require.NoError(t, err)

	cur, err := users.All(ctx, cursor.QueryOptions{BatchSize: 3}, cursor.RawResults())
	require.NoError(t, err)
	e, err := cur.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, e.Object)
	body := cl.lastQuery.Load().(map[string]any)
	assert.Equal(t, "users", body["collection"])
	assert.EqualValues(t, 3, body["batchSize"])

	_, err = users.ByExample(ctx, map[string]any{"name": "Ann"}, cursor.QueryOptions{})
	require.NoError(t, err)
	body = cl.lastQuery.Load().(map[string]any)
	assert.Equal(t, map[string]any{"name": "Ann"}, body["example"])
}

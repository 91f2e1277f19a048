package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/docdb/internal/client/client"
	"github.com/dmitrijs2005/docdb/internal/client/config"
	"github.com/dmitrijs2005/docdb/internal/client/cursor"
	"github.com/dmitrijs2005/docdb/internal/logging"
	"github.com/dmitrijs2005/docdb/internal/metrics"
)

type App struct {
	conn *client.Connection
	db   *client.Database
	log  logging.Logger
	out  io.Writer
	in   io.Reader
}

// NewApp connects to the cluster described by c. When credentials are
// needed and c has no password, it is read from the terminal. A nil m
// leaves the connection with private, unexported counters.
func NewApp(c *config.Config, log logging.Logger, m *metrics.Metrics) (*App, error) {
	if c.AuthMode != config.AuthNone && c.Password == "" {
		pw, err := GetPassword(os.Stdout, c.Username)
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		c.Password = pw
	}

	opts := []client.Option{client.WithLogger(log)}
	if m != nil {
		opts = append(opts, client.WithMetrics(m))
	}
	conn, err := client.NewConnection(c, opts...)
	if err != nil {
		return nil, err
	}
	return newApp(conn, c.Database, log, os.Stdin, os.Stdout), nil
}

func newApp(conn *client.Connection, database string, log logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{conn: conn, db: conn.Database(database), log: log, in: in, out: out}
}

// Run blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintf(a.out, "docdb shell, database %s (type 'help' for commands)\n", a.db.Name())
	runREPL(ctx, a, a.out, bufio.NewScanner(a.in))
}

func (a *App) Version(ctx context.Context) error {
	v, err := a.conn.Version(ctx)
	if err != nil {
		return a.fail(ctx, "version", err)
	}
	fmt.Fprintf(a.out, "%s %s (%s)\n", v.Server, v.Version, v.License)
	return nil
}

func (a *App) Get(ctx context.Context, collection, key string) error {
	coll, err := a.db.Collection(ctx, collection)
	if err != nil {
		return a.fail(ctx, "get", err)
	}
	obj, err := coll.Document(ctx, key)
	if err != nil {
		return a.fail(ctx, "get", err)
	}
	fmt.Fprintln(a.out, string(obj.Raw()))
	return nil
}

func (a *App) Query(ctx context.Context, aql string) (err error) {
	cur, err := a.db.Query(ctx, aql, cursor.QueryOptions{Count: true}, cursor.RawResults())
	if err != nil {
		return a.fail(ctx, "query", err)
	}
	defer func() {
		if cerr := cur.Close(ctx); cerr != nil && err == nil {
			err = a.fail(ctx, "query", cerr)
		}
	}()

	n := 0
	for e, err := range cur.All(ctx) {
		if err != nil {
			return a.fail(ctx, "query", err)
		}
		fmt.Fprintln(a.out, compact(e.Raw))
		n++
	}
	fmt.Fprintf(a.out, "(%d results)\n", n)
	return nil
}

func (a *App) Chain(ctx context.Context, collection string) error {
	coll, err := a.db.Collection(ctx, collection)
	if err != nil {
		return a.fail(ctx, "chain", err)
	}
	keys := coll.CacheChain()
	if len(keys) == 0 {
		fmt.Fprintln(a.out, "(cache empty)")
		return nil
	}
	for _, k := range keys {
		fmt.Fprintln(a.out, k)
	}
	return nil
}

func (a *App) Forget(ctx context.Context, collection, key string) error {
	coll, err := a.db.Collection(ctx, collection)
	if err != nil {
		return a.fail(ctx, "forget", err)
	}
	if err := coll.Forget(key); err != nil {
		return a.fail(ctx, "forget", err)
	}
	return nil
}

// fail reports err to the user and the log and hands it back.
func (a *App) fail(ctx context.Context, op string, err error) error {
	fmt.Fprintf(a.out, "%s failed: %v\n", op, err)
	a.log.Error(ctx, "command failed", "command", op, "error", err)
	return err
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

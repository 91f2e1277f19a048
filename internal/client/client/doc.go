// Package client is the entry point of the cluster client.
//
// # Overview
//
// A Connection owns the pieces every call goes through: the endpoint
// selector, the auth provider and the resilient session. It is built once,
// usually from a config.Config, and passed explicitly to whatever needs it;
// there is no package-level state.
//
//	conn, err := client.NewConnection(cfg, client.WithLogger(log))
//	db := conn.Database("app")
//	users, err := db.Collection(ctx, "users")
//	doc, err := users.Document(ctx, "ann")
//
// Databases resolve collection types through a static registry, filled with
// Register or, for unknown names, by asking the server once. Collections keep
// a fixed-size cache of the documents they fetched.
//
// # Metrics
//
// Counters go to the metrics.Metrics given with WithMetrics. Exporting them
// is up to the caller: register them on a prometheus.Registerer with
// metrics.New and serve metrics.Handler, as cmd/cli does with -metrics.
// Without WithMetrics the connection counts into private collectors.
//
// # Error Handling
//
// Errors wrap the sentinels of package common and, for failed calls, carry a
// *common.RequestError with the request and response context.
//
// Concurrency & Contexts
//
// Connection, Database and Collection are safe for concurrent use. Cursors
// are not; read each one from a single goroutine.
package client

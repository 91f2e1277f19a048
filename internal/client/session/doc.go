// Package session executes HTTP calls against the cluster.
//
// A Session resolves the target coordinator through an endpoint.Selector,
// attaches credentials from an auth.Provider and sends the request through a
// resty client configured with a connection-level retry budget. On top of
// that it handles three application-level conditions, in this order:
//
//   - empty response bodies (HEAD aside), which are treated as a broken
//     transport whatever the status;
//   - 401 with a refreshable provider: one refresh, one retry, and a second
//     401 surfaces as common.ErrAuthorization;
//   - transient write conflicts (errorNum 1200 in the JSON body): the whole
//     call, endpoint selection included, is repeated; when the budget runs
//     out the last response is returned without an error.
//
// Every other response, error statuses included, is returned unchanged for
// the caller to interpret; Response.Err maps error bodies to typed errors.
package session

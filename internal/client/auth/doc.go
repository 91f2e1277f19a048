// Package auth supplies per-request authentication material for the
// session layer.
//
// Two providers exist:
//   - Basic attaches fixed HTTP basic credentials and never fails.
//   - JWT logs in against the cluster, decodes the returned token's expiry and
//     refreshes it before it runs out.
//
// # Refresh discipline
//
// The token record is swapped atomically; readers may see the previous token
// until a refresh completes. All logins go through one guard, so at most one
// login call is in flight per provider. Callers that notice the token is
// expiring take the guard and re-check before logging in; forced refreshes
// (after a 401) are additionally coalesced with singleflight.
//
// Providers that can refresh implement Refresher. The session detects it by
// type assertion and performs the refresh-once-and-retry-once dance on 401.
package auth

// Package common contains shared constants and sentinel errors used across
// the docdb client components.
package common

// RequestIDHeaderName is the HTTP header carrying a per-call request id on
// outbound requests.
const RequestIDHeaderName = "X-Request-Id"

// ConflictErrorNum is the server error number signalling a write-write
// conflict. Responses carrying it are eligible for a transparent retry.
const ConflictErrorNum = 1200

// Server API paths shared by the session, auth and cursor layers.
const (
	AuthPath       = "/_open/auth"
	VersionPath    = "/_api/version"
	CursorPath     = "/_api/cursor"
	DocumentPath   = "/_api/document"
	CollectionPath = "/_api/collection"
	SimpleAllPath  = "/_api/simple/all"
	SimpleByExPath = "/_api/simple/by-example"
)

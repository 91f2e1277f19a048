// Package config loads the settings of a cluster connection.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed with DOCDB_ (DOCDB_ENDPOINTS,
//     DOCDB_MAX_RETRIES, ...).
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-e string     comma-separated coordinator URLs
//	-d string     database
//	-u, -p        user name and password
//	-m string     auth mode: jwt, basic or none
//	-s string     endpoint selection: round-robin or random
//	-r int        connection retries per request
//	-k int        write conflict retries per request (negative: unlimited)
//	-t duration   request timeout
//	-l, -f        log level and format
//	-cache int    documents cached per collection
//	-batch int    cursor batch size
//	-metrics addr serve Prometheus metrics on addr (host:port)
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "30s" or integer
// nanoseconds:
//
//	{
//	  "endpoints": ["http://10.0.0.1:8529", "http://10.0.0.2:8529"],
//	  "database": "app",
//	  "auth_mode": "jwt",
//	  "request_timeout": "30s",
//	  "refresh_threshold": "12h"
//	}
package config

// Package cli provides the interactive docdb shell.
//
// It loads the configuration, opens a connection to the cluster and runs a
// REPL over it. The password is asked for on the terminal when the
// configuration does not carry one.
//
// Commands:
//   - version                 show the server version
//   - get <collection> <key>  fetch a document, from the cache when possible
//   - query <aql>             run a query and print every result
//   - chain <collection>      print the cached keys, most recent first
//   - forget <collection> <key>
//   - help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

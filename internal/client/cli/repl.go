package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL drives. App satisfies it; tests
// provide a stub.
type execIface interface {
	Version(ctx context.Context) error
	Get(ctx context.Context, collection, key string) error
	Query(ctx context.Context, aql string) error
	Chain(ctx context.Context, collection string) error
	Forget(ctx context.Context, collection, key string) error
}

const helpText = "Available commands: version, get <collection> <key>, query <aql>, chain <collection>, forget <collection> <key>, exit"

// runREPL reads commands from scanner until EOF, "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, w io.Writer, scanner *bufio.Scanner) {
	for {
		fmt.Fprint(w, "docdb> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText)

		case "version":
			_ = a.Version(ctx)

		case "get":
			if len(args) != 2 {
				fmt.Fprintln(w, "Usage: get <collection> <key>")
				continue
			}
			_ = a.Get(ctx, args[0], args[1])

		case "query":
			aql := strings.TrimSpace(strings.TrimPrefix(line, cmd))
			if aql == "" {
				fmt.Fprintln(w, "Usage: query <aql>")
				continue
			}
			_ = a.Query(ctx, aql)

		case "chain":
			if len(args) != 1 {
				fmt.Fprintln(w, "Usage: chain <collection>")
				continue
			}
			_ = a.Chain(ctx, args[0])

		case "forget":
			if len(args) != 2 {
				fmt.Fprintln(w, "Usage: forget <collection> <key>")
				continue
			}
			_ = a.Forget(ctx, args[0], args[1])

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}

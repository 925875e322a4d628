// Package cli provides the interactive stickyhabits command-line client.
//
// It wires configuration, the gRPC client and the client services into a
// read-eval-print loop. A background watcher pings the server and shows
// whether it is reachable in the prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

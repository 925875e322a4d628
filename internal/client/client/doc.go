// Package client talks to the escrow server.
//
// GRPCClient implements Client over gRPC. It attaches the access token to
// every call, refreshes an expired token once and retries, and maps status
// codes onto the sentinel errors in errors.go.
package client

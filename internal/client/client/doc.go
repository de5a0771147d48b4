// Package client contains the client-side building blocks that talk to the
// outside world.
//
// # Overview
//
//  1. A transport-agnostic contract for the remote entry API (Client) and its
//     HTTP/JSON implementation (HTTPClient). Every request carries the
//     installation's user key in the X-User-Key header.
//  2. Local persistence bootstrap: InitDatabase opens SQLite (modernc driver)
//     and applies the embedded goose migrations; Storage is the process-wide
//     lazily opened handle shared by all repositories.
//
// # Error Handling
//
// Failures are exposed as sentinel errors matched with errors.Is:
// ErrUnavailable (unreachable, timed out, or non-success status),
// ErrUnauthorized, ErrNotFound (404).
package client

// Package cli provides the coffeelog command-line client.
//
// It wires configuration, local storage, the remote entry API and the
// offline resource cache into a cobra command tree. Every mutating or
// syncing command ends with exactly one status line: the entry was synced,
// it was saved locally, or the server could not be used.
//
// Commands: add, edit, list, show, delete, sync, serve, whoami.
package cli

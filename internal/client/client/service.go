package client

import (
	"context"
	"encoding/json"
)

// Client is the remote entry API used by the sync engine and the entry
// lifecycle operations. Entries travel as raw JSON objects so a merge can
// tell a field the remote omits, which keeps the local value, from one it
// sends as null. Fields outside models.Entry are dropped.
type Client interface {
	// Ping reports whether the server answers at all.
	Ping(ctx context.Context) error

	// PushEntries uploads a batch and returns the canonical server copies.
	PushEntries(ctx context.Context, userKey string, entries []json.RawMessage) ([]json.RawMessage, error)

	// PullEntries returns the full remote collection for userKey.
	PullEntries(ctx context.Context, userKey string) ([]json.RawMessage, error)

	// GetEntry returns a single entry or ErrNotFound.
	GetEntry(ctx context.Context, userKey, id string) (json.RawMessage, error)

	// DeleteEntry removes an entry remotely; ErrNotFound if already absent.
	DeleteEntry(ctx context.Context, userKey, id string) error
}

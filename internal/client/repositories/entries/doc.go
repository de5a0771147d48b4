// Package entries is the local, durable store of brew entries.
//
// # Data Model
//
// One row per entry id (last write wins). The row holds the entry as a JSON
// document plus three derived columns: created_at and brew_date, which back
// the "most recent first" ordering and are indexed, and synced, which backs
// the unsynced lookup.
//
// # Concurrency
//
// The store expects the single-connection pool opened by client.InitDatabase.
// Statements and transactions are therefore serialized: PutMany is one
// transaction and readers see either the state before or after the batch.
//
// # Errors
//
// Every failed statement or transaction is returned as *StorageError. An
// absent id is not an error: Get returns (nil, nil) and Delete succeeds.
package entries

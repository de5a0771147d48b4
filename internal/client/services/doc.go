// Package services contains the application services of the coffeelog
// client: the installation identity, the entry lifecycle (create, edit,
// delete, fetch) and the sync engine that reconciles the local store with
// the remote entry API.
//
// All services read and write entries through the local store only; the
// remote side is reached through client.Client and only while the
// connectivity monitor reports online.
package services

import "context"

// Connectivity reports whether the remote API is currently reachable.
type Connectivity interface {
	Online() bool
}

// UserKeySource resolves the identity token sent with every remote request.
type UserKeySource interface {
	UserKey(ctx context.Context) (string, error)
}

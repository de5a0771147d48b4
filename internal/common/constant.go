// Package common contains constants shared by the client packages.
package common

// UserKeyHeaderName carries the per-installation identity token on every
// request to the remote entry API.
const UserKeyHeaderName = "X-User-Key"

// Metadata keys kept in the local key/value table.
const (
	MetaUserKey         = "user_key"
	MetaAppliedVersion  = "app_version"
	MetaActiveCacheName = "active_cache"
)

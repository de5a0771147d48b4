// Package rescache keeps the web UI usable when the network is not.
//
// Transport is an http.RoundTripper that sits in front of the real network
// and answers from a persisted response cache when the network fails. Data
// API requests go network first, navigations go network first with the
// cached page (or the root page) as fallback, and static assets are served
// cache first.
//
// Activator populates a versioned cache namespace with the shell resources
// needed to boot the UI offline. A namespace only becomes active once every
// shell resource was fetched and stored; older namespaces are then evicted
// in one go.
package rescache

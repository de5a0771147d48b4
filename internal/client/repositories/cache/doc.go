// Package cache stores HTTP responses for offline use, grouped into named
// namespaces. A namespace is written as a whole when the application shell is
// activated and dropped as a whole when a newer shell replaces it; individual
// API responses are added to the active namespace as they are fetched.
package cache

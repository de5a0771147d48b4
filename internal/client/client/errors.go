package client

import "errors"

var (
	// ErrUnavailable covers every network failure: unreachable host, timeout,
	// or a non-success status from the remote API.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Package hashx derives stable storage keys from request identity.
package hashx

import (
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/coffeelog/internal/common"
	"golang.org/x/crypto/blake2b"
)

// RequestKey returns a hex BLAKE2b-256 digest of method, full URL and the
// user key header of r. Data API responses depend on the user key, so it is
// part of a request's cache identity.
func RequestKey(r *http.Request) string {
	return Key(r.Method, r.URL.String(), r.Header.Get(common.UserKeyHeaderName))
}

// PathKey is the key used for bare-path (navigation) cache entries.
func PathKey(path string) string {
	return Key(http.MethodGet, path, "")
}

// Key hashes the given parts joined with newlines.
func Key(parts ...string) string {
	sum := blake2b.Sum256([]byte(strings.Join(parts, "\n")))
	return hex.EncodeToString(sum[:])
}

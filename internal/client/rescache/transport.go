package rescache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/coffeelog/internal/client/repositories/cache"
	"github.com/dmitrijs2005/coffeelog/internal/hashx"
	"github.com/dmitrijs2005/coffeelog/internal/logging"
)

const (
	// NamePrefix starts every shell namespace name.
	NamePrefix = "coffeelog-shell-v"

	// SourceHeader is set on responses produced by the cache.
	SourceHeader = "X-Coffeelog-Cache"

	apiPrefix = "/api/"
	rootPath  = "/"
)

// CacheName returns the namespace name for an application version.
func CacheName(version string) string {
	return NamePrefix + version
}

// Transport serves requests from the network and falls back to the active
// cache namespace when the network is unavailable.
type Transport struct {
	next  http.RoundTripper
	store cache.Repository
	log   logging.Logger

	mu     sync.RWMutex
	active string
}

func NewTransport(next http.RoundTripper, store cache.Repository, log logging.Logger, active string) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{next: next, store: store, log: log, active: active}
}

func (t *Transport) SetActive(name string) {
	t.mu.Lock()
	t.active = name
	t.mu.Unlock()
}

func (t *Transport) Active() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	switch {
	case isAPI(req) && req.Method != http.MethodGet:
		return t.apiWrite(req)
	case isAPI(req):
		return t.apiRead(req)
	case isNavigation(req):
		return t.navigate(req)
	case req.Method == http.MethodGet:
		return t.asset(req)
	default:
		return t.next.RoundTrip(req)
	}
}

func (t *Transport) apiWrite(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.log.Warn(req.Context(), "api write offline", "method", req.Method, "url", req.URL.String(), "error", err)
		return synthetic(req, http.StatusServiceUnavailable, "application/json", `{"detail":"Offline"}`), nil
	}
	return resp, nil
}

func (t *Transport) apiRead(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	key := hashx.RequestKey(req)

	resp, err := t.next.RoundTrip(req)
	if err == nil {
		return t.keep(ctx, req, resp, key)
	}

	t.log.Warn(ctx, "api read offline", "url", req.URL.String(), "error", err)
	if cached := t.lookup(ctx, req, key); cached != nil {
		return cached, nil
	}
	return synthetic(req, http.StatusOK, "application/json", "[]"), nil
}

func (t *Transport) navigate(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	key := hashx.PathKey(req.URL.Path)

	resp, err := t.next.RoundTrip(req)
	if err == nil {
		return t.keep(ctx, req, resp, key)
	}

	t.log.Warn(ctx, "navigation offline", "path", req.URL.Path, "error", err)
	if cached := t.lookup(ctx, req, key); cached != nil {
		return cached, nil
	}
	if cached := t.lookup(ctx, req, hashx.PathKey(rootPath)); cached != nil {
		return cached, nil
	}
	return synthetic(req, http.StatusServiceUnavailable, "text/plain; charset=utf-8", "Offline"), nil
}

func (t *Transport) asset(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	key := hashx.RequestKey(req)

	if cached := t.lookup(ctx, req, key); cached != nil {
		return cached, nil
	}

	resp, err := t.next.RoundTrip(req)
	if err == nil {
		return t.keep(ctx, req, resp, key)
	}

	if cached := t.lookup(ctx, req, hashx.PathKey(rootPath)); cached != nil {
		t.log.Warn(ctx, "asset offline, serving root page", "url", req.URL.String(), "error", err)
		return cached, nil
	}
	return nil, err
}

// keep buffers a live response, stores a copy when it succeeded and a cache
// namespace is active, and returns an equivalent response to the caller.
func (t *Transport) keep(ctx context.Context, req *http.Request, resp *http.Response, key string) (*http.Response, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", req.URL, err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}

	name := t.Active()
	if name == "" {
		return resp, nil
	}
	err = t.store.Put(ctx, cache.Response{
		Name:     name,
		Key:      key,
		URL:      req.URL.String(),
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     body,
		StoredAt: time.Now(),
	})
	if err != nil {
		t.log.Error(ctx, "caching response failed", "cache", name, "url", req.URL.String(), "error", err)
	}
	return resp, nil
}

func (t *Transport) lookup(ctx context.Context, req *http.Request, key string) *http.Response {
	name := t.Active()
	cached, err := t.store.Match(ctx, name, key)
	if err != nil {
		t.log.Error(ctx, "cache lookup failed", "cache", name, "url", req.URL.String(), "error", err)
		return nil
	}
	if cached == nil {
		return nil
	}

	header := cached.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set(SourceHeader, "hit")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", cached.Status, http.StatusText(cached.Status)),
		StatusCode:    cached.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(cached.Body)),
		ContentLength: int64(len(cached.Body)),
		Request:       req,
	}
}

func synthetic(req *http.Request, status int, contentType, body string) *http.Response {
	header := http.Header{}
	header.Set("Content-Type", contentType)
	header.Set(SourceHeader, "offline")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func isAPI(req *http.Request) bool {
	return strings.HasPrefix(req.URL.Path, apiPrefix)
}

func isNavigation(req *http.Request) bool {
	if req.Method != http.MethodGet {
		return false
	}
	if req.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}

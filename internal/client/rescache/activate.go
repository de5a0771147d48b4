package rescache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/coffeelog/internal/client/repositories/cache"
	"github.com/dmitrijs2005/coffeelog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/coffeelog/internal/common"
	"github.com/dmitrijs2005/coffeelog/internal/hashx"
	"github.com/dmitrijs2005/coffeelog/internal/logging"
	"golang.org/x/sync/errgroup"
)

const shellFetchLimit = 4

// Activator installs versioned shell namespaces.
type Activator struct {
	baseURL string
	client  *http.Client
	store   cache.Repository
	meta    metadata.Repository
	log     logging.Logger
}

// NewActivator fetches shell resources relative to baseURL with client,
// which must reach the network directly rather than through a Transport.
func NewActivator(baseURL string, client *http.Client, store cache.Repository, meta metadata.Repository, log logging.Logger) *Activator {
	if client == nil {
		client = http.DefaultClient
	}
	return &Activator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		store:   store,
		meta:    meta,
		log:     log,
	}
}

// Current returns the active namespace, or "" before the first activation.
func (a *Activator) Current(ctx context.Context) (string, error) {
	name, _, err := a.meta.GetString(ctx, common.MetaActiveCacheName)
	if err != nil {
		return "", fmt.Errorf("read active cache: %w", err)
	}
	return name, nil
}

// Apply activates version unless it is already the applied and active one.
func (a *Activator) Apply(ctx context.Context, version string, shell []string) (string, error) {
	applied, _, err := a.meta.GetString(ctx, common.MetaAppliedVersion)
	if err != nil {
		return "", fmt.Errorf("read applied version: %w", err)
	}
	current, err := a.Current(ctx)
	if err != nil {
		return "", err
	}
	if applied == version && current == CacheName(version) {
		return current, nil
	}

	a.log.Info(ctx, "new app version", "from", applied, "to", version)
	return a.Activate(ctx, version, shell)
}

// Activate fetches every shell resource, stores them in the namespace for
// version and makes it the active one. On any failure nothing is stored and
// the previous namespace stays active. Namespaces of other versions are
// evicted once the new one is in place.
func (a *Activator) Activate(ctx context.Context, version string, shell []string) (string, error) {
	name := CacheName(version)
	fetched := make([][]cache.Response, len(shell))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(shellFetchLimit)
	for i, path := range shell {
		g.Go(func() error {
			rows, err := a.fetch(gctx, name, path)
			if err != nil {
				return err
			}
			fetched[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.log.Warn(ctx, "cache activation failed", "cache", name, "error", err)
		return "", fmt.Errorf("activate %s: %w", name, err)
	}

	var rows []cache.Response
	for _, r := range fetched {
		rows = append(rows, r...)
	}
	if err := a.store.PutMany(ctx, rows); err != nil {
		return "", fmt.Errorf("activate %s: %w", name, err)
	}
	if err := a.meta.SetString(ctx, common.MetaActiveCacheName, name); err != nil {
		return "", fmt.Errorf("activate %s: %w", name, err)
	}

	evicted, err := a.store.DeleteOtherNamespaces(ctx, NamePrefix, name)
	if err != nil {
		return "", fmt.Errorf("activate %s: %w", name, err)
	}
	if err := a.meta.SetString(ctx, common.MetaAppliedVersion, version); err != nil {
		return "", fmt.Errorf("activate %s: %w", name, err)
	}

	a.log.Info(ctx, "cache activated", "cache", name, "resources", len(shell), "evicted", evicted)
	return name, nil
}

// fetch downloads one shell resource. It is stored under its request key and
// under its bare path, so it also answers navigations.
func (a *Activator) fetch(ctx context.Context, name, path string) ([]cache.Response, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("shell %s: %w", path, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shell %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("shell %s: unexpected status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("shell %s: %w", path, err)
	}

	now := time.Now()
	row := cache.Response{
		Name:     name,
		URL:      req.URL.String(),
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     body,
		StoredAt: now,
	}
	byRequest, byPath := row, row
	byRequest.Key = hashx.RequestKey(req)
	byPath.Key = hashx.PathKey(req.URL.Path)
	return []cache.Response{byRequest, byPath}, nil
}

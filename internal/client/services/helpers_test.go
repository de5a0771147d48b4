package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/coffeelog/internal/client/client"
	"github.com/dmitrijs2005/coffeelog/internal/logging"
)

// fakeRemote is an in-memory remote entry API.
type fakeRemote struct {
	mu      sync.Mutex
	entries map[string]map[string]any

	// rename overrides coffee_name of pushed entries, keyed by id.
	rename map[string]string

	pushErr   error
	pullErr   error
	getErr    error
	deleteErr error

	pullGate chan struct{}

	lastPush []map[string]any
	keys     []string
	calls    atomic.Int32
	pulls    atomic.Int32
}

var _ client.Client = (*fakeRemote)(nil)

func newFakeRemote() *fakeRemote {
	return &fakeRemote{entries: map[string]map[string]any{}, rename: map[string]string{}}
}

func (f *fakeRemote) seed(t *testing.T, raw string) {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	f.mu.Lock()
	f.entries[doc["id"].(string)] = doc
	f.mu.Unlock()
}

func (f *fakeRemote) record(key string) {
	f.calls.Add(1)
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()
}

func (f *fakeRemote) Ping(ctx context.Context) error {
	f.calls.Add(1)
	return nil
}

func (f *fakeRemote) PushEntries(ctx context.Context, userKey string, entries []json.RawMessage) ([]json.RawMessage, error) {
	f.record(userKey)
	if f.pushErr != nil {
		return nil, f.pushErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastPush = nil
	out := make([]json.RawMessage, 0, len(entries))
	for _, raw := range entries {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		f.lastPush = append(f.lastPush, doc)

		id := doc["id"].(string)
		if name, ok := f.rename[id]; ok {
			doc["coffee_name"] = name
		}
		f.entries[id] = doc

		b, _ := json.Marshal(doc)
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeRemote) PullEntries(ctx context.Context, userKey string) ([]json.RawMessage, error) {
	f.record(userKey)
	f.pulls.Add(1)
	if f.pullGate != nil {
		<-f.pullGate
	}
	if f.pullErr != nil {
		return nil, f.pullErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, len(f.entries))
	for id := range f.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		b, _ := json.Marshal(f.entries[id])
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeRemote) GetEntry(ctx context.Context, userKey, id string) (json.RawMessage, error) {
	f.record(userKey)
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.entries[id]
	if !ok {
		return nil, client.ErrNotFound
	}
	b, _ := json.Marshal(doc)
	return b, nil
}

func (f *fakeRemote) DeleteEntry(ctx context.Context, userKey, id string) error {
	f.record(userKey)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[id]; !ok {
		return client.ErrNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeRemote) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[id]
	return ok
}

type switchConn struct{ online atomic.Bool }

func (c *switchConn) Online() bool { return c.online.Load() }

type env struct {
	repos    *client.Repositories
	remote   *fakeRemote
	conn     *switchConn
	identity IdentityService
	entries  EntryService
	sync     SyncService
	synced   atomic.Int32
}

func newEnv(t *testing.T, online bool) *env {
	t.Helper()
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e := &env{
		repos:  client.NewRepositories(db),
		remote: newFakeRemote(),
		conn:   &switchConn{},
	}
	e.conn.online.Store(online)
	e.identity = NewIdentityService(e.repos.Metadata)
	e.entries = NewEntryService(e.repos.Entries, e.remote, e.identity, e.conn, nil, logging.Discard())
	e.sync = NewSyncService(e.repos.Entries, e.remote, e.identity, e.conn, logging.Discard(),
		func(ctx context.Context, r SyncResult) { e.synced.Add(1) })
	return e
}

func intp(v int) *int { return &v }

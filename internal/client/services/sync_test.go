package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/coffeelog/internal/client/client"
	"github.com/dmitrijs2005/coffeelog/internal/client/models"
)

func TestSync_OfflineReportsSavedLocally(t *testing.T) {
	e := newEnv(t, false)

	res, err := e.sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusOffline, res.Status)
	assert.Equal(t, StateOffline, res.State)
	assert.Equal(t, "Offline — saved locally.", res.Status.Message())
	assert.Equal(t, int32(0), e.remote.calls.Load())
	assert.Equal(t, int32(0), e.synced.Load())
}

func TestSync_PushedEntryTakesServerFields(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	require.NoError(t, e.repos.Entries.Put(ctx, &models.Entry{
		ID:         "a",
		CreatedAt:  "2024-01-01T00:00:00.000Z",
		BrewDate:   "2024-01-01T08:00",
		CoffeeName: "Local Name",
	}))
	e.remote.rename["a"] = "Server Name"

	res, err := e.sync.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusSynced, res.Status)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, 1, res.Pushed)
	assert.Equal(t, 1, res.Pulled)

	got, err := e.repos.Entries.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Server Name", got.CoffeeName)
	assert.True(t, got.Synced)
	assert.Equal(t, int32(1), e.synced.Load())
}

func TestSync_PushStripsLocalFieldsAndKeepsPhotos(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	photos := []string{"data:image/png;base64,AAAA", "data:image/jpeg;base64,BBBB"}
	require.NoError(t, e.repos.Entries.Put(ctx, &models.Entry{
		ID:         "a",
		CreatedAt:  "2024-01-01T00:00:00.000Z",
		BrewDate:   "2024-01-01T08:00",
		CoffeeName: "A",
		Photos:     photos,
	}))

	_, err := e.sync.Sync(ctx)
	require.NoError(t, err)

	require.Len(t, e.remote.lastPush, 1)
	assert.NotContains(t, e.remote.lastPush[0], "synced")
	assert.NotContains(t, e.remote.lastPush[0], "photos")

	got, err := e.repos.Entries.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, got.Synced)
	assert.Equal(t, photos, got.Photos)
}

func TestSync_SendsUserKey(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	key, err := e.identity.UserKey(ctx)
	require.NoError(t, err)

	_, err = e.sync.Sync(ctx)
	require.NoError(t, err)

	require.NotEmpty(t, e.remote.keys)
	for _, k := range e.remote.keys {
		assert.Equal(t, key, k)
	}
}

func TestSync_PullAddsRemoteEntries(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	e.remote.seed(t, `{"id":"r1","created_at":"2024-01-01T00:00:00.000Z","brew_date":"2024-01-03T08:00","coffee_name":"Remote","aroma":["berry"]}`)

	res, err := e.sync.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Pushed)
	assert.Equal(t, 1, res.Pulled)

	all, err := e.entries.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Remote", all[0].CoffeeName)
	assert.Equal(t, []string{"berry"}, all[0].Aroma)
	assert.True(t, all[0].Synced)
}

func TestSync_PushFailureLeavesStoreUntouched(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	created, err := e.entries.Create(ctx, models.Draft{CoffeeName: "A"})
	require.NoError(t, err)
	e.remote.pushErr = fmt.Errorf("%w: 502", client.ErrUnavailable)

	res, err := e.sync.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, StateFailed, res.State)
	assert.ErrorIs(t, res.Err, client.ErrUnavailable)
	assert.Equal(t, "Server unavailable. Entries remain local.", res.Status.Message())
	assert.Equal(t, int32(0), e.remote.pulls.Load())
	assert.Equal(t, int32(0), e.synced.Load())

	got, err := e.repos.Entries.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Synced)
}

func TestSync_PullFailureKeepsPushedEntries(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	created, err := e.entries.Create(ctx, models.Draft{CoffeeName: "A"})
	require.NoError(t, err)
	e.remote.pullErr = fmt.Errorf("%w: timeout", client.ErrUnavailable)

	res, err := e.sync.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 1, res.Pushed)

	got, err := e.repos.Entries.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Synced)
}

func TestSync_OfflineDeleteIsResurrectedByPull(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	created, err := e.entries.Create(ctx, models.Draft{CoffeeName: "A"})
	require.NoError(t, err)
	_, err = e.sync.Sync(ctx)
	require.NoError(t, err)

	e.conn.online.Store(false)
	_, err = e.entries.Delete(ctx, created.ID)
	require.NoError(t, err)

	e.conn.online.Store(true)
	res, err := e.sync.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusSynced, res.Status)

	got, err := e.repos.Entries.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Synced)
}

func TestSync_RemoteWinsOverLocalEdit(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	require.NoError(t, e.repos.Entries.Put(ctx, &models.Entry{
		ID:         "x",
		CoffeeName: "Mine",
		Photos:     []string{"data:image/png;base64,AAAA"},
		Synced:     true,
	}))
	e.remote.seed(t, `{"id":"x","coffee_name":"Theirs","overall":9}`)

	_, err := e.sync.Sync(ctx)
	require.NoError(t, err)

	got, err := e.repos.Entries.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "Theirs", got.CoffeeName)
	require.NotNil(t, got.Overall)
	assert.Equal(t, 9, *got.Overall)
	assert.Equal(t, []string{"data:image/png;base64,AAAA"}, got.Photos)
}

func TestSync_MalformedRemoteFails(t *testing.T) {
	e := newEnv(t, true)
	e.remote.seed(t, `{"id":"","coffee_name":"nameless"}`)

	res, err := e.sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, models.ErrMalformedRemote)
}

func TestSync_StorageFailureIsReturned(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	_, err := e.identity.UserKey(ctx)
	require.NoError(t, err)
	require.NoError(t, e.repos.DB.Close())

	_, err = e.sync.Sync(ctx)
	require.Error(t, err)
}

func TestSync_OverlappingCallsShareOneRun(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	_, err := e.identity.UserKey(ctx)
	require.NoError(t, err)

	e.remote.pullGate = make(chan struct{})

	var wg sync.WaitGroup
	results := make([]SyncResult, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.sync.Sync(ctx)
			if err != nil {
				t.Errorf("sync %d: %v", i, err)
			}
			results[i] = res
		}(i)
	}

	require.Eventually(t, func() bool { return e.remote.pulls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(e.remote.pullGate)
	wg.Wait()

	assert.Equal(t, int32(1), e.remote.pulls.Load())
	assert.Equal(t, StatusSynced, results[0].Status)
	assert.Equal(t, StatusSynced, results[1].Status)
}

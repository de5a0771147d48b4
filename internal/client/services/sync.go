package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/coffeelog/internal/client/client"
	"github.com/dmitrijs2005/coffeelog/internal/client/models"
	"github.com/dmitrijs2005/coffeelog/internal/client/repositories/entries"
	"github.com/dmitrijs2005/coffeelog/internal/logging"
	"golang.org/x/sync/singleflight"
)

// SyncState is a step of one sync invocation.
type SyncState string

const (
	StateIdle              SyncState = "IDLE"
	StateCheckConnectivity SyncState = "CHECK_CONNECTIVITY"
	StateOffline           SyncState = "OFFLINE"
	StatePush              SyncState = "PUSH"
	StatePull              SyncState = "PULL"
	StateMerge             SyncState = "MERGE"
	StateDone              SyncState = "DONE"
	StateFailed            SyncState = "FAILED"
)

// SyncStatus is the user-visible outcome of a sync.
type SyncStatus string

const (
	StatusSynced  SyncStatus = "synced"
	StatusOffline SyncStatus = "offline"
	StatusFailed  SyncStatus = "failed"
)

func (s SyncStatus) Message() string {
	switch s {
	case StatusSynced:
		return "Sync complete."
	case StatusOffline:
		return "Offline — saved locally."
	default:
		return "Server unavailable. Entries remain local."
	}
}

// SyncResult describes one finished sync. Err holds the remote failure that
// led to StatusFailed.
type SyncResult struct {
	Status SyncStatus
	State  SyncState
	Pushed int
	Pulled int
	Err    error
}

type SyncService interface {
	// Sync pushes unsynced entries, pulls the remote collection and merges
	// both into the local store. Remote failures are reported through the
	// result; only local storage failures are returned as errors. Calls that
	// overlap a running sync share its result.
	Sync(ctx context.Context) (SyncResult, error)
}

// AfterSync runs after every successful sync, e.g. to re-render an entry
// list that is currently on screen.
type AfterSync func(ctx context.Context, r SyncResult)

type syncService struct {
	repo     entries.Repository
	remote   client.Client
	identity UserKeySource
	conn     Connectivity
	log      logging.Logger
	after    AfterSync

	group singleflight.Group
}

func NewSyncService(repo entries.Repository, remote client.Client, identity UserKeySource, conn Connectivity, log logging.Logger, after AfterSync) SyncService {
	return &syncService{
		repo:     repo,
		remote:   remote,
		identity: identity,
		conn:     conn,
		log:      log,
		after:    after,
	}
}

func (s *syncService) Sync(ctx context.Context) (SyncResult, error) {
	v, err, shared := s.group.Do("sync", func() (any, error) {
		return s.run(ctx)
	})
	if shared {
		s.log.Debug(ctx, "joined running sync")
	}
	res, _ := v.(SyncResult)
	if err != nil {
		res.Status = StatusFailed
		res.State = StateFailed
	}
	return res, err
}

func (s *syncService) run(ctx context.Context) (SyncResult, error) {
	res := SyncResult{State: StateIdle}
	s.enter(ctx, &res, StateCheckConnectivity)

	if !s.conn.Online() {
		s.enter(ctx, &res, StateOffline)
		res.Status = StatusOffline
		return res, nil
	}

	key, err := s.identity.UserKey(ctx)
	if err != nil {
		return res, err
	}

	s.enter(ctx, &res, StatePush)
	if err := s.push(ctx, key, &res); err != nil {
		return s.fail(ctx, res, err)
	}

	s.enter(ctx, &res, StatePull)
	remote, err := s.remote.PullEntries(ctx, key)
	if err != nil {
		return s.fail(ctx, res, err)
	}

	s.enter(ctx, &res, StateMerge)
	if err := s.merge(ctx, remote, &res); err != nil {
		return s.fail(ctx, res, err)
	}

	s.enter(ctx, &res, StateDone)
	res.Status = StatusSynced
	s.log.Info(ctx, "sync finished", "pushed", res.Pushed, "pulled", res.Pulled)

	if s.after != nil {
		s.after(ctx, res)
	}
	return res, nil
}

func (s *syncService) push(ctx context.Context, key string, res *SyncResult) error {
	unsynced, err := s.repo.GetUnsynced(ctx)
	if err != nil {
		return storageFailure{err}
	}
	if len(unsynced) == 0 {
		return nil
	}

	payload := make([]json.RawMessage, 0, len(unsynced))
	for _, e := range unsynced {
		p, err := e.WirePayload()
		if err != nil {
			return fmt.Errorf("encode entry %s: %w", e.ID, err)
		}
		payload = append(payload, p)
	}

	echoed, err := s.remote.PushEntries(ctx, key, payload)
	if err != nil {
		return err
	}

	local := make(map[string]*models.Entry, len(unsynced))
	for i := range unsynced {
		local[unsynced[i].ID] = &unsynced[i]
	}

	merged := make([]*models.Entry, 0, len(echoed))
	for _, raw := range echoed {
		id, err := models.RemoteID(raw)
		if err != nil {
			return err
		}
		base, ok := local[id]
		if !ok {
			if base, err = s.repo.Get(ctx, id); err != nil {
				return storageFailure{err}
			}
		}
		m, err := models.MergeRemote(base, raw)
		if err != nil {
			return err
		}
		merged = append(merged, m)
	}

	if err := s.repo.PutMany(ctx, merged); err != nil {
		return storageFailure{err}
	}
	res.Pushed = len(merged)
	return nil
}

func (s *syncService) merge(ctx context.Context, remote []json.RawMessage, res *SyncResult) error {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return storageFailure{err}
	}
	local := make(map[string]*models.Entry, len(all))
	for i := range all {
		local[all[i].ID] = &all[i]
	}

	merged := make([]*models.Entry, 0, len(remote))
	for _, raw := range remote {
		id, err := models.RemoteID(raw)
		if err != nil {
			return err
		}
		m, err := models.MergeRemote(local[id], raw)
		if err != nil {
			return err
		}
		merged = append(merged, m)
	}

	if err := s.repo.PutMany(ctx, merged); err != nil {
		return storageFailure{err}
	}
	res.Pulled = len(merged)
	return nil
}

// fail ends a sync after the connectivity check. Storage failures are
// returned to the caller; anything else means the server could not be used.
func (s *syncService) fail(ctx context.Context, res SyncResult, err error) (SyncResult, error) {
	s.enter(ctx, &res, StateFailed)
	res.Status = StatusFailed

	var sf storageFailure
	if errors.As(err, &sf) {
		s.log.Error(ctx, "sync aborted by storage failure", "error", sf.err)
		return res, fmt.Errorf("sync: %w", sf.err)
	}

	res.Err = err
	s.log.Warn(ctx, "sync failed, entries remain local", "error", err)
	return res, nil
}

func (s *syncService) enter(ctx context.Context, res *SyncResult, st SyncState) {
	res.State = st
	s.log.Debug(ctx, "sync state", "state", string(st))
}

type storageFailure struct{ err error }

func (f storageFailure) Error() string { return f.err.Error() }
func (f storageFailure) Unwrap() error { return f.err }

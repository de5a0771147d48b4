package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/coffeelog/internal/client/client"
	"github.com/dmitrijs2005/coffeelog/internal/client/models"
	"github.com/dmitrijs2005/coffeelog/internal/client/repositories/entries"
	"github.com/dmitrijs2005/coffeelog/internal/logging"
)

var ErrEntryNotFound = errors.New("entry not found")

// EntryService is the entry lifecycle API used by the UI.
type EntryService interface {
	// Create builds a new unsynced entry from the draft and stores it.
	Create(ctx context.Context, d models.Draft) (*models.Entry, error)

	// Edit replaces the entry id with the draft, keeping its id and
	// created_at. Existing photos are kept when the draft has none.
	Edit(ctx context.Context, id string, d models.Draft) (*models.Entry, error)

	// Delete removes an entry. While online the server is asked first and
	// the local copy is kept if it refuses or cannot be reached. The
	// returned flag reports whether the server was involved.
	Delete(ctx context.Context, id string) (remote bool, err error)

	// Fetch returns an entry for viewing or editing, falling back to the
	// server when it is not stored locally. A missing entry is (nil, nil).
	Fetch(ctx context.Context, id string) (*models.Entry, error)

	List(ctx context.Context) ([]models.Entry, error)
}

type entryService struct {
	repo       entries.Repository
	remote     client.Client
	identity   UserKeySource
	conn       Connectivity
	compressor models.Compressor
	log        logging.Logger
	now        func() time.Time
}

func NewEntryService(repo entries.Repository, remote client.Client, identity UserKeySource, conn Connectivity, compressor models.Compressor, log logging.Logger) EntryService {
	return &entryService{
		repo:       repo,
		remote:     remote,
		identity:   identity,
		conn:       conn,
		compressor: compressor,
		log:        log,
		now:        time.Now,
	}
}

func (s *entryService) Create(ctx context.Context, d models.Draft) (*models.Entry, error) {
	now := s.now()
	e := &models.Entry{
		ID:        newID(now),
		CreatedAt: isoTimestamp(now),
	}
	if err := s.save(ctx, e, d, now); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "entry created", "id", e.ID)
	return e, nil
}

func (s *entryService) Edit(ctx context.Context, id string, d models.Draft) (*models.Entry, error) {
	existing, err := s.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("edit %s: %w", id, ErrEntryNotFound)
	}

	e := &models.Entry{
		ID:        existing.ID,
		CreatedAt: existing.CreatedAt,
		Photos:    existing.Photos,
	}
	if err := s.save(ctx, e, d, s.now()); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "entry edited", "id", e.ID)
	return e, nil
}

// save validates everything before touching the store.
func (s *entryService) save(ctx context.Context, e *models.Entry, d models.Draft, now time.Time) error {
	if len(d.Photos) > 0 {
		photos, err := models.ProcessPhotos(ctx, d.Photos, s.compressor)
		if err != nil {
			return err
		}
		e.Photos = photos
	}

	if err := d.Apply(e, now); err != nil {
		return err
	}
	e.Synced = false

	if err := s.repo.Put(ctx, e); err != nil {
		s.log.Error(ctx, "saving entry failed", "id", e.ID, "error", err)
		return fmt.Errorf("save entry %s: %w", e.ID, err)
	}
	return nil
}

func (s *entryService) Delete(ctx context.Context, id string) (bool, error) {
	remote := s.conn.Online()
	if remote {
		key, err := s.identity.UserKey(ctx)
		if err != nil {
			return false, err
		}
		err = s.remote.DeleteEntry(ctx, key, id)
		switch {
		case err == nil, errors.Is(err, client.ErrNotFound):
		default:
			s.log.Warn(ctx, "remote delete failed, entry kept", "id", id, "error", err)
			return true, fmt.Errorf("delete %s: %w", id, err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error(ctx, "local delete failed", "id", id, "error", err)
		return remote, fmt.Errorf("delete %s: %w", id, err)
	}
	s.log.Info(ctx, "entry deleted", "id", id, "remote", remote)
	return remote, nil
}

func (s *entryService) Fetch(ctx context.Context, id string) (*models.Entry, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	if e != nil || !s.conn.Online() {
		return e, nil
	}

	key, err := s.identity.UserKey(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := s.remote.GetEntry(ctx, key, id)
	if err != nil {
		if !errors.Is(err, client.ErrNotFound) {
			s.log.Warn(ctx, "remote fetch failed", "id", id, "error", err)
		}
		return nil, nil
	}

	merged, err := models.MergeRemote(nil, raw)
	if err != nil {
		s.log.Warn(ctx, "remote entry rejected", "id", id, "error", err)
		return nil, nil
	}
	if err := s.repo.Put(ctx, merged); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	s.log.Debug(ctx, "entry fetched from server", "id", id)
	return merged, nil
}

func (s *entryService) List(ctx context.Context) ([]models.Entry, error) {
	list, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return list, nil
}

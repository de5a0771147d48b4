package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/coffeelog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/coffeelog/internal/common"
	"github.com/google/uuid"
)

// IdentityService owns the installation's user key: created once, persisted
// in metadata and reused for every remote request.
type IdentityService interface {
	UserKey(ctx context.Context) (string, error)
	// Reset forgets the key; the next UserKey call creates a new one.
	Reset(ctx context.Context) error
}

type identityService struct {
	meta    metadata.Repository
	newUUID func() (uuid.UUID, error)
	now     func() time.Time
}

func NewIdentityService(meta metadata.Repository) IdentityService {
	return &identityService{meta: meta, newUUID: uuid.NewRandom, now: time.Now}
}

func (s *identityService) UserKey(ctx context.Context) (string, error) {
	key, ok, err := s.meta.GetString(ctx, common.MetaUserKey)
	if err != nil {
		return "", fmt.Errorf("read user key: %w", err)
	}
	if ok {
		return key, nil
	}

	candidate := s.generate()
	stored, err := s.meta.SetIfAbsent(ctx, common.MetaUserKey, []byte(candidate))
	if err != nil {
		return "", fmt.Errorf("store user key: %w", err)
	}
	if len(stored) == 0 {
		if err := s.meta.SetString(ctx, common.MetaUserKey, candidate); err != nil {
			return "", fmt.Errorf("store user key: %w", err)
		}
		return candidate, nil
	}
	return string(stored), nil
}

func (s *identityService) Reset(ctx context.Context) error {
	if err := s.meta.Delete(ctx, common.MetaUserKey); err != nil {
		return fmt.Errorf("reset user key: %w", err)
	}
	return nil
}

func (s *identityService) generate() string {
	if id, err := s.newUUID(); err == nil {
		return id.String()
	}
	return fmt.Sprintf("user-%d-%s", s.now().UnixMilli(), randomSuffix())
}

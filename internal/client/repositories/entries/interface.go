package entries

import (
	"context"

	"github.com/dmitrijs2005/coffeelog/internal/client/models"
)

// Repository is the local entry store.
type Repository interface {
	// Get returns the entry with id, or (nil, nil) when there is none.
	Get(ctx context.Context, id string) (*models.Entry, error)

	// GetAll returns every entry, most recent brew first; ties are broken by
	// the most recently created.
	GetAll(ctx context.Context) ([]models.Entry, error)

	// Put inserts or replaces an entry by id.
	Put(ctx context.Context, e *models.Entry) error

	// PutMany upserts a batch in one transaction: all entries are written or
	// none are.
	PutMany(ctx context.Context, es []*models.Entry) error

	// Delete removes an entry. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// GetUnsynced returns entries with local changes not yet acknowledged by
	// the server, in GetAll order.
	GetUnsynced(ctx context.Context) ([]models.Entry, error)
}

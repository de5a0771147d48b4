package entries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/coffeelog/internal/client/models"
	"github.com/dmitrijs2005/coffeelog/internal/dbx"
)

const orderByRecent = ` ORDER BY brew_date DESC, created_at DESC, id DESC`

// SQLiteRepository implements Repository on the entries table. Each row keeps
// the full entry as a JSON document next to the columns used for ordering and
// the unsynced lookup.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Entry, error) {
	var doc []byte
	err := r.db.QueryRowContext(ctx, `SELECT doc FROM entries WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get", err)
	}

	var e models.Entry
	if err := json.Unmarshal(doc, &e); err != nil {
		return nil, storageErr("get", fmt.Errorf("decode entry %s: %w", id, err))
	}
	return &e, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Entry, error) {
	return r.list(ctx, "get all", `SELECT doc FROM entries`+orderByRecent)
}

func (r *SQLiteRepository) GetUnsynced(ctx context.Context) ([]models.Entry, error) {
	return r.list(ctx, "get unsynced", `SELECT doc FROM entries WHERE synced = 0`+orderByRecent)
}

func (r *SQLiteRepository) Put(ctx context.Context, e *models.Entry) error {
	if err := upsert(ctx, r.db, e); err != nil {
		return storageErr("put", err)
	}
	return nil
}

func (r *SQLiteRepository) PutMany(ctx context.Context, es []*models.Entry) error {
	if len(es) == 0 {
		return nil
	}
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, e := range es {
			if err := upsert(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storageErr("put many", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
		return storageErr("delete", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, op, query string) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	result := make([]models.Entry, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, storageErr(op, err)
		}
		var e models.Entry
		if err := json.Unmarshal(doc, &e); err != nil {
			return nil, storageErr(op, fmt.Errorf("decode entry: %w", err))
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return result, nil
}

func upsert(ctx context.Context, db dbx.DBTX, e *models.Entry) error {
	if e == nil || e.ID == "" {
		return ErrMissingID
	}
	doc, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry %s: %w", e.ID, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO entries (id, created_at, brew_date, synced, doc)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			brew_date = excluded.brew_date,
			synced = excluded.synced,
			doc = excluded.doc
	`, e.ID, e.CreatedAt, e.BrewDate, e.Synced, doc)
	if err != nil {
		return fmt.Errorf("upsert entry %s: %w", e.ID, err)
	}
	return nil
}

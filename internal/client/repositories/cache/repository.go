package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/dmitrijs2005/coffeelog/internal/dbx"
)

const table = "cache_responses"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Response is one stored HTTP response.
type Response struct {
	Name     string
	Key      string
	URL      string
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

type Repository interface {
	Put(ctx context.Context, r Response) error
	PutMany(ctx context.Context, rs []Response) error
	// Match returns (nil, nil) when nothing is stored under name/key.
	Match(ctx context.Context, name, key string) (*Response, error)
	Namespaces(ctx context.Context) ([]string, error)
	// DeleteOtherNamespaces drops every namespace starting with prefix except keep.
	DeleteOtherNamespaces(ctx context.Context, prefix, keep string) (int64, error)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, resp Response) error {
	if err := put(ctx, r.db, resp); err != nil {
		return fmt.Errorf("failed to put cache[%s] %s: %w", resp.Name, resp.URL, err)
	}
	return nil
}

func (r *SQLiteRepository) PutMany(ctx context.Context, rs []Response) error {
	if len(rs) == 0 {
		return nil
	}
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, resp := range rs {
			if err := put(ctx, tx, resp); err != nil {
				return fmt.Errorf("%s: %w", resp.URL, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to put cache batch: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Match(ctx context.Context, name, key string) (*Response, error) {
	query, args, err := psql.
		Select("url", "status", "header", "body", "stored_at").
		From(table).
		Where(squirrel.Eq{"cache_name": name, "key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build match query: %w", err)
	}

	resp := Response{Name: name, Key: key}
	var header []byte
	var storedAt string
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&resp.URL, &resp.Status, &header, &resp.Body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to match cache[%s]: %w", name, err)
	}

	if err := json.Unmarshal(header, &resp.Header); err != nil {
		return nil, fmt.Errorf("decode cached header %s: %w", resp.URL, err)
	}
	resp.StoredAt, err = time.Parse(time.RFC3339Nano, storedAt)
	if err != nil {
		return nil, fmt.Errorf("decode cached stored_at %s: %w", resp.URL, err)
	}
	return &resp, nil
}

func (r *SQLiteRepository) Namespaces(ctx context.Context) ([]string, error) {
	query, args, err := psql.Select("DISTINCT cache_name").From(table).OrderBy("cache_name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build namespaces query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache namespaces: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan cache namespace: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cache namespaces: %w", err)
	}
	return names, nil
}

func (r *SQLiteRepository) DeleteOtherNamespaces(ctx context.Context, prefix, keep string) (int64, error) {
	n, err := r.delete(ctx, squirrel.And{
		squirrel.Like{"cache_name": prefix + "%"},
		squirrel.NotEq{"cache_name": keep},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to evict caches %s*: %w", prefix, err)
	}
	return n, nil
}

func (r *SQLiteRepository) delete(ctx context.Context, pred squirrel.Sqlizer) (int64, error) {
	query, args, err := psql.Delete(table).Where(pred).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func put(ctx context.Context, db dbx.DBTX, resp Response) error {
	header, err := json.Marshal(resp.Header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	storedAt := resp.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now()
	}
	body := resp.Body
	if body == nil {
		body = []byte{}
	}

	query, args, err := psql.
		Insert(table).
		Columns("cache_name", "key", "url", "status", "header", "body", "stored_at").
		Values(resp.Name, resp.Key, resp.URL, resp.Status, header, body, storedAt.UTC().Format(time.RFC3339Nano)).
		Suffix(`ON CONFLICT(cache_name, key) DO UPDATE SET
			url = excluded.url,
			status = excluded.status,
			header = excluded.header,
			body = excluded.body,
			stored_at = excluded.stored_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = db.ExecContext(ctx, query, args...)
	return err
}

package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/coffeelog/internal/client/migrations"
	"github.com/dmitrijs2005/coffeelog/internal/client/repositories/cache"
	"github.com/dmitrijs2005/coffeelog/internal/client/repositories/entries"
	"github.com/dmitrijs2005/coffeelog/internal/client/repositories/metadata"
	"github.com/pressly/goose/v3"
	"golang.org/x/sync/singleflight"

	_ "modernc.org/sqlite"
)

var gooseMu sync.Mutex

// Repositories bundles the local repositories sharing one database handle.
type Repositories struct {
	DB       *sql.DB
	Entries  *entries.SQLiteRepository
	Metadata *metadata.SQLiteRepository
	Cache    *cache.SQLiteRepository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		DB:       db,
		Entries:  entries.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
		Cache:    cache.NewSQLiteRepository(db),
	}
}

// RunMigrations applies the embedded goose migrations. It is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	// goose keeps its base FS and dialect in package state.
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// FileDSN turns a database file path into a modernc SQLite DSN with a busy
// timeout. Values that already look like DSNs are returned unchanged.
func FileDSN(path string) string {
	if strings.HasPrefix(path, "file:") || path == ":memory:" {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// InitDatabase opens the SQLite database and brings its schema up to date.
// The pool is limited to one connection: every statement and transaction on
// the store is serialized, so a batch write is never observed half-applied.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Storage is the process-wide, lazily opened database handle. The first
// caller opens the database; callers arriving while that is in flight wait
// for the same result. A failed open is not cached, so the next call retries.
type Storage struct {
	dsn   string
	group singleflight.Group

	mu    sync.Mutex
	repos *Repositories
}

func NewStorage(dsn string) *Storage {
	return &Storage{dsn: dsn}
}

// Repositories returns the shared repositories, opening the database on
// first use.
func (s *Storage) Repositories(ctx context.Context) (*Repositories, error) {
	if r := s.current(); r != nil {
		return r, nil
	}

	v, err, _ := s.group.Do("open", func() (any, error) {
		if r := s.current(); r != nil {
			return r, nil
		}
		db, err := InitDatabase(ctx, s.dsn)
		if err != nil {
			return nil, err
		}
		r := NewRepositories(db)

		s.mu.Lock()
		s.repos = r
		s.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Repositories), nil
}

// Close releases the handle if it was opened.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repos == nil {
		return nil
	}
	err := s.repos.DB.Close()
	s.repos = nil
	return err
}

func (s *Storage) current() *Repositories {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repos
}

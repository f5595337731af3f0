package config

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"messages-service/internal/domain"
	"messages-service/internal/observability"

	_ "github.com/lib/pq"
)

// PoolSettings configures the database/sql connection pool
type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolSettings matches the defaults of Config
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// NewPostgresConnection creates a new PostgreSQL connection pool and verifies it
func NewPostgresConnection(ctx context.Context, dbURL string, pool PoolSettings) (*sql.DB, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Opener establishes a connection pool
type Opener func(ctx context.Context, dsn string, pool PoolSettings) (*sql.DB, error)

// DatabaseOption customizes a Database
type DatabaseOption func(*Database)

// WithOpener replaces the function used to open the pool
func WithOpener(open Opener) DatabaseOption {
	return func(d *Database) {
		d.open = open
	}
}

// Database is the process-wide, lazily initialized connection handle.
// The pool is opened on the first EnsureReady call and shared afterwards.
type Database struct {
	dsn  string
	pool PoolSettings
	open Opener

	mu     sync.Mutex
	closed bool
	db     atomic.Pointer[sql.DB]
}

// NewDatabase creates a handle that connects on first use
func NewDatabase(dsn string, pool PoolSettings, opts ...DatabaseOption) *Database {
	d := &Database{
		dsn:  dsn,
		pool: pool,
		open: NewPostgresConnection,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDatabaseFromDB wraps an already open pool
func NewDatabaseFromDB(db *sql.DB) *Database {
	d := NewDatabase("", DefaultPoolSettings())
	d.db.Store(db)
	return d
}

// EnsureReady returns the shared pool, opening it on first use.
// Concurrent first callers wait for a single initialization. A failed
// attempt is not cached, so a later call connects again.
func (d *Database) EnsureReady(ctx context.Context) (*sql.DB, error) {
	if db := d.db.Load(); db != nil {
		return db, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if db := d.db.Load(); db != nil {
		return db, nil
	}
	if d.closed {
		return nil, fmt.Errorf("%w: database handle is closed", domain.ErrConnection)
	}

	log := observability.FromContext(ctx)

	db, err := d.open(ctx, d.dsn, d.pool)
	if err != nil {
		log.Error("failed to establish database connection", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}

	d.db.Store(db)
	log.Info("database connection established")

	return db, nil
}

// IsReady reports whether the pool has been opened
func (d *Database) IsReady() bool {
	return d.db.Load() != nil
}

// Stats returns pool statistics; ok is false before initialization
func (d *Database) Stats() (stats sql.DBStats, ok bool) {
	db := d.db.Load()
	if db == nil {
		return sql.DBStats{}, false
	}
	return db.Stats(), true
}

// Close closes the pool if it was opened. Further EnsureReady calls fail.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	db := d.db.Swap(nil)
	if db == nil {
		return nil
	}
	return db.Close()
}

package localstore

import (
	"context"
	"database/sql"
	"sync"

	"github.com/akalniens/keepsync/internal/localstore/migrations"
	"github.com/pressly/goose/v3"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Handle is a lazily-initialized, process-wide local store handle. The first
// caller opens the database and runs migrations; concurrent first callers
// collapse to a single underlying store instance.
type Handle struct {
	dsn string

	once  sync.Once
	store *Store
	err   error
}

// NewHandle prepares a handle for the given SQLite DSN without opening it.
func NewHandle(dsn string) *Handle {
	return &Handle{dsn: dsn}
}

// Store opens the database on first use and returns the shared Store.
func (h *Handle) Store(ctx context.Context) (*Store, error) {
	h.once.Do(func() {
		db, err := sql.Open("sqlite3", h.dsn)
		if err != nil {
			h.err = err
			return
		}
		if err := RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			h.err = err
			return
		}
		h.store = New(db)
	})
	return h.store, h.err
}

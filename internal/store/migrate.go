package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrNoChange is returned when there is no migration to apply.
var ErrNoChange = errors.New("no migration to apply")

// Migrator applies the embedded schema migrations to an open database.
type Migrator struct {
	mig *migrate.Migrate
}

// NewMigrator prepares migrations against db. The Migrator does not own db;
// callers close it themselves.
func NewMigrator(db *sql.DB) (*Migrator, error) {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}
	drv, err := msqlite.WithInstance(db, &msqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}
	mig, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	return &Migrator{mig: mig}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up() error {
	return mapNoChange(m.mig.Up())
}

// Down rolls back the most recent migration.
func (m *Migrator) Down() error {
	err := m.mig.Steps(-1)
	// Stepping down from an empty schema reports ErrNotExist.
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNoChange
	}
	return mapNoChange(err)
}

// Version returns the applied schema version. ok is false on a fresh
// database.
func (m *Migrator) Version() (version uint, dirty bool, ok bool, err error) {
	version, dirty, err = m.mig.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("schema version: %w", err)
	}
	return version, dirty, true, nil
}

func mapNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return ErrNoChange
	}
	var short migrate.ErrShortLimit
	if errors.As(err, &short) {
		return ErrNoChange
	}
	return err
}

// Package migrations holds the embedded schema migrations of the workflow
// store and a golang-migrate driver for ncruces/go-sqlite3.
//
// golang-migrate's own sqlite3 driver imports mattn/go-sqlite3, which
// registers under the same "sqlite3" name as the ncruces driver, so the
// package ships its own driver instead (see driver.go).
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/vihar-s1/bytechef/internal/log"
)

//go:embed *.sql
var embeddedMigrationsFS embed.FS

// MigrationsFS returns the embedded migration files.
func MigrationsFS() fs.FS {
	return embeddedMigrationsFS
}

// New returns a migrator over db using the embedded migrations.
func New(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(embeddedMigrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := WithInstance(db, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", source, "sqlite3", driver)
}

// RunMigrations applies all pending migrations. An up-to-date database is not an error.
func RunMigrations(db *sql.DB) error {
	m, err := New(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug(log.CatDB, "Schema up to date")
			return nil
		}
		return err
	}
	if version, _, err := m.Version(); err == nil {
		log.Info(log.CatDB, "Schema migrated", "version", version)
	}
	return nil
}

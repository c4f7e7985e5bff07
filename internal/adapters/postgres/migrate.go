package postgres

import (
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"humesync/migrations/postgres"
	"humesync/pkg/errors"
	"humesync/pkg/logger"
)

// Migrate applies every pending embedded migration
func (c *Client) Migrate() error {
	src, err := iofs.New(postgres.FS, ".")
	if err != nil {
		return errors.Wrap(err, "open embedded migrations")
	}

	driver, err := migratepg.WithInstance(c.db.DB, &migratepg.Config{})
	if err != nil {
		return errors.Wrap(err, "init migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, "init migrator")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errors.Wrap(err, "read migration version")
	}
	logger.Get().Infow("Postgres schema ready", "version", version, "dirty", dirty)
	return nil
}

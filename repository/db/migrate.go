package db

import (
	"fmt"

	"taskboard/internal/domain/errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migration applies every pending migration found in migratePath.
func Migration(dsn, migratePath string) error {
	if dsn == "" || migratePath == "" {
		return fmt.Errorf("%w: dsn and migrate path are required", errors.ErrConfigInvalidFormat)
	}

	m, err := migrate.New("file://"+migratePath, dsn)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

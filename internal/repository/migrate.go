package repository

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose"
)

// Migrate applies every pending goose migration found in dir.
func Migrate(dtb *sql.DB, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(dtb, dir); err != nil {
		return fmt.Errorf("failed to apply migrations from %s: %w", dir, err)
	}

	return nil
}

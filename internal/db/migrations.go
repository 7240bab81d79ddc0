package db

import (
	"context"
	"fmt"
)

// migrations run in order; the schema version is kept in PRAGMA user_version.
var migrations = []func(db *DB) error{
	(*DB).createSchema,
	(*DB).fixLegacyTimeFormats,
}

func (db *DB) migrate() error {
	var version int
	if err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](db); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := db.ExecContext(context.Background(), fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}
	return nil
}

// SchemaVersion returns the applied migration count.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version)
	return version, err
}

// fixLegacyTimeFormats normalizes timestamps written by time.Time's String
// layout (" +0000 UTC" suffix) so SQLite date functions can compare them.
func (db *DB) fixLegacyTimeFormats() error {
	queries := []string{
		`UPDATE dam_readings
		 SET recorded_at = SUBSTR(recorded_at, 1, 19)
		 WHERE length(recorded_at) > 19 AND recorded_at LIKE '% UTC'`,

		`UPDATE export_history
		 SET created_at = SUBSTR(created_at, 1, 19)
		 WHERE length(created_at) > 19 AND created_at LIKE '% UTC'`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			return fmt.Errorf("failed to fix legacy time formats: %w", err)
		}
	}

	return nil
}

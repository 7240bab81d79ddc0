package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SaveSource stores the latest successful payload of a live source.
func (db *DB) SaveSource(source string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", source, err)
	}

	query := `
		INSERT INTO source_cache (source, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(context.Background(), query, source, string(data), time.Now().Format(sqlTimeLayout)); err != nil {
		return fmt.Errorf("failed to save %s payload: %w", source, err)
	}
	return nil
}

// LoadSource decodes the cached payload of a source into v. It returns
// false when nothing has been cached yet.
func (db *DB) LoadSource(source string, v any) (time.Time, bool, error) {
	var payload, updated string
	err := db.QueryRowContext(context.Background(),
		"SELECT payload, updated_at FROM source_cache WHERE source = ?", source,
	).Scan(&payload, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to load %s payload: %w", source, err)
	}

	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to decode %s payload: %w", source, err)
	}
	t, _ := time.ParseInLocation(sqlTimeLayout, updated, time.Local)
	return t, true, nil
}

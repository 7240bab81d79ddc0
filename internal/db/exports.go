package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

// InsertExportRecord stores a finished export.
func (db *DB) InsertExportRecord(rec models.ExportRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	query := `
		INSERT INTO export_history (
			id, kind, format, path, stations, window_start, window_end,
			bytes, error, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(context.Background(), query,
		rec.ID,
		string(rec.Kind),
		string(rec.Format),
		nullString(rec.Path),
		rec.Stations,
		rec.Start.In(time.Local).Format(sqlTimeLayout),
		rec.End.In(time.Local).Format(sqlTimeLayout),
		rec.Bytes,
		nullString(rec.Error),
		rec.DurationMs,
		created.In(time.Local).Format(sqlTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert export record: %w", err)
	}
	return nil
}

// RecentExports returns the latest export records, newest first.
func (db *DB) RecentExports(limit int) ([]models.ExportRecord, error) {
	query := `
		SELECT id, kind, format, path, stations, window_start, window_end,
			   bytes, error, duration_ms, created_at
		FROM export_history
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query export history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.ExportRecord
	for rows.Next() {
		var rec models.ExportRecord
		var kind, format, start, end, created string
		var path, errStr sql.NullString

		if err := rows.Scan(&rec.ID, &kind, &format, &path, &rec.Stations, &start, &end,
			&rec.Bytes, &errStr, &rec.DurationMs, &created); err != nil {
			return nil, fmt.Errorf("failed to scan export record: %w", err)
		}

		rec.Kind = models.ReportKind(kind)
		rec.Format = models.ExportFormat(format)
		rec.Path = path.String
		rec.Error = errStr.String
		rec.Start, _ = time.ParseInLocation(sqlTimeLayout, start, time.Local)
		rec.End, _ = time.ParseInLocation(sqlTimeLayout, end, time.Local)
		rec.CreatedAt, _ = time.ParseInLocation(sqlTimeLayout, created, time.Local)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// nullString converts an empty string to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

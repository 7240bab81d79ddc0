package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
)

// InsertDamReading records one dam reading.
func (db *DB) InsertDamReading(d models.DamStation) error {
	recorded := d.RecordedAt
	if recorded.IsZero() {
		recorded = time.Now()
	}

	query := `
		INSERT INTO dam_readings (name, head_loss, intech_level, level_pier_1, level_pier_6, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(context.Background(), query,
		d.Title, d.HeadLoss, d.IntechLevel, d.LevelPier1, d.LevelPier6,
		recorded.In(time.Local).Format(sqlTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert dam reading: %w", err)
	}
	return nil
}

// DamReadings returns one page of readings inside the window, oldest first,
// and the total number of readings in the window.
func (db *DB) DamReadings(ctx context.Context, w models.TimeWindow, page, pageSize int) ([]models.DamStation, int, error) {
	from := w.Start.In(time.Local).Format(sqlTimeLayout)
	to := w.End.In(time.Local).Format(sqlTimeLayout)

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM dam_readings "+sqlWindowClause, from, to).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count dam readings: %w", err)
	}

	query := `
		SELECT name, head_loss, intech_level, level_pier_1, level_pier_6, recorded_at
		FROM dam_readings ` + sqlWindowClause + `
		ORDER BY recorded_at ASC, id ASC
		LIMIT ? OFFSET ?
	`
	rows, err := db.QueryContext(ctx, query, from, to, pageSize, (max(page, 1)-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query dam readings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var readings []models.DamStation
	for rows.Next() {
		var d models.DamStation
		var recorded string
		if err := rows.Scan(&d.Title, &d.HeadLoss, &d.IntechLevel, &d.LevelPier1, &d.LevelPier6, &recorded); err != nil {
			return nil, 0, fmt.Errorf("failed to scan dam reading: %w", err)
		}
		d.ID = "dam-1"
		d.RecordedAt, _ = time.ParseInLocation(sqlTimeLayout, recorded, time.Local)
		readings = append(readings, d)
	}
	return readings, total, rows.Err()
}

// RecentDamReadings returns the latest readings, oldest first.
func (db *DB) RecentDamReadings(limit int) ([]models.DamStation, error) {
	query := `
		SELECT name, head_loss, intech_level, level_pier_1, level_pier_6, recorded_at
		FROM (
			SELECT * FROM dam_readings ORDER BY recorded_at DESC, id DESC LIMIT ?
		) ORDER BY recorded_at ASC, id ASC
	`
	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent dam readings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var readings []models.DamStation
	for rows.Next() {
		var d models.DamStation
		var recorded string
		if err := rows.Scan(&d.Title, &d.HeadLoss, &d.IntechLevel, &d.LevelPier1, &d.LevelPier6, &recorded); err != nil {
			return nil, fmt.Errorf("failed to scan dam reading: %w", err)
		}
		d.ID = "dam-1"
		d.RecordedAt, _ = time.ParseInLocation(sqlTimeLayout, recorded, time.Local)
		readings = append(readings, d)
	}
	return readings, rows.Err()
}

// CleanupOldDamReadings removes readings older than the given number of days.
func (db *DB) CleanupOldDamReadings(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays).Format(sqlTimeLayout)
	result, err := db.ExecContext(context.Background(), "DELETE FROM dam_readings WHERE recorded_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup dam readings: %w", err)
	}
	return result.RowsAffected()
}

// FetchReport serves the dam report from recorded readings.
func (db *DB) FetchReport(ctx context.Context, q models.ReportQuery) (models.ReportResult, error) {
	if q.Kind != models.ReportDam {
		return models.ReportResult{}, fmt.Errorf("report %q is not recorded locally", q.Kind)
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	page := max(q.Page, 1)

	readings, total, err := db.DamReadings(ctx, q.Window, page, pageSize)
	if err != nil {
		return models.ReportResult{}, err
	}

	rows := make([]models.Row, len(readings))
	for i, d := range readings {
		rows[i] = models.Row{
			"sno":         strconv.Itoa((page-1)*pageSize + i + 1),
			"timestamp":   d.RecordedAt.Format(models.TimestampLayout),
			"headLoss":    models.FormatValue(d.HeadLoss),
			"intechLevel": models.FormatValue(d.IntechLevel),
			"levelPier1":  models.FormatValue(d.LevelPier1),
			"levelPier6":  models.FormatValue(d.LevelPier6),
		}
	}
	return models.ReportResult{Rows: rows, Total: total}, nil
}

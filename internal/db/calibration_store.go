package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no calibration set is stored under a key.
var ErrNotFound = errors.New("calibration set not found")

// CalibrationEntry describes one stored calibration set.
type CalibrationEntry struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// SaveCalibration stores data under key, replacing any previous set.
func (db *DB) SaveCalibration(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("calibration key must not be empty")
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO calibration_sets (calibration_key, data, updated_unix_nano)
		VALUES (?, ?, ?)
		ON CONFLICT(calibration_key) DO UPDATE SET
			data = excluded.data,
			updated_unix_nano = excluded.updated_unix_nano`,
		key, data, db.clock.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save calibration set %q: %w", key, err)
	}
	return nil
}

// LoadCalibration returns the data stored under key, or (nil, nil) if there
// is none.
func (db *DB) LoadCalibration(ctx context.Context, key string) ([]byte, error) {
	data, err := db.GetCalibration(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return data, err
}

// GetCalibration returns the data stored under key or ErrNotFound.
func (db *DB) GetCalibration(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := db.QueryRowContext(ctx,
		`SELECT data FROM calibration_sets WHERE calibration_key = ?`, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load calibration set %q: %w", key, err)
	}
	return data, nil
}

// ListCalibrations returns every stored set, most recently updated first.
func (db *DB) ListCalibrations(ctx context.Context) ([]CalibrationEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT calibration_key, length(data), updated_unix_nano
		FROM calibration_sets
		ORDER BY updated_unix_nano DESC, calibration_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list calibration sets: %w", err)
	}
	defer rows.Close()

	var entries []CalibrationEntry
	for rows.Next() {
		var (
			e    CalibrationEntry
			nano int64
		)
		if err := rows.Scan(&e.Key, &e.Size, &nano); err != nil {
			return nil, fmt.Errorf("failed to scan calibration set: %w", err)
		}
		e.UpdatedAt = time.Unix(0, nano).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteCalibration removes the set stored under key or returns ErrNotFound.
func (db *DB) DeleteCalibration(ctx context.Context, key string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM calibration_sets WHERE calibration_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete calibration set %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

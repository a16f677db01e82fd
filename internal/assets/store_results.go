package assets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SetResult records the outcome of a conversion attempt, replacing any
// prior result wholesale. One UPDATE per asset keeps the write atomic.
func (s *Store) SetResult(ctx context.Context, id int64, result *Result) error {
	if result == nil {
		return errors.New("result is nil")
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE assets SET result_status = ?, result_json = ?, updated_at = ? WHERE id = ?`,
		string(result.Status),
		string(payload),
		timestampNow(),
		id,
	)
	if err != nil {
		return fmt.Errorf("set result: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// Result returns the recorded conversion result, or nil when the asset
// is unprocessed.
func (s *Store) Result(ctx context.Context, id int64) (*Result, error) {
	var resultJSON sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT result_json FROM assets WHERE id = ?`, id).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	if !resultJSON.Valid || resultJSON.String == "" {
		return nil, nil
	}
	var result Result
	if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &result, nil
}

// ClearResult erases the conversion result and the originals_deleted
// flag so the asset re-enters the unprocessed population. Restore uses
// this after putting original files back.
func (s *Store) ClearResult(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE assets SET result_status = NULL, result_json = NULL, originals_deleted = 0, updated_at = ? WHERE id = ?`,
		timestampNow(),
		id,
	)
	if err != nil {
		return fmt.Errorf("clear result: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// SetOriginalsDeleted marks the asset's original files as removed. The
// flag is permanent until a restore clears it.
func (s *Store) SetOriginalsDeleted(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE assets SET originals_deleted = 1, updated_at = ? WHERE id = ?`,
		timestampNow(),
		id,
	)
	if err != nil {
		return fmt.Errorf("set originals deleted: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// Metadata returns the value stored under key for an asset, or "".
func (s *Store) Metadata(ctx context.Context, id int64, key string) (string, error) {
	var metadataJSON sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT metadata_json FROM assets WHERE id = ?`, id).Scan(&metadataJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("get metadata: %w", err)
	}
	if !metadataJSON.Valid || metadataJSON.String == "" {
		return "", nil
	}
	values := map[string]string{}
	if err := json.Unmarshal([]byte(metadataJSON.String), &values); err != nil {
		return "", fmt.Errorf("decode metadata: %w", err)
	}
	return values[key], nil
}

// SetMetadata stores value under key for an asset. An empty value
// removes the key.
func (s *Store) SetMetadata(ctx context.Context, id int64, key, value string) error {
	var metadataJSON sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT metadata_json FROM assets WHERE id = ?`, id).Scan(&metadataJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}

	values := map[string]string{}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &values); err != nil {
			return fmt.Errorf("decode metadata: %w", err)
		}
	}
	if value == "" {
		delete(values, key)
	} else {
		values[key] = value
	}

	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if _, err := s.db.ExecContext(
		ctx,
		`UPDATE assets SET metadata_json = ?, updated_at = ? WHERE id = ?`,
		string(payload),
		timestampNow(),
		id,
	); err != nil {
		return fmt.Errorf("set metadata: %w", err)
	}
	return nil
}

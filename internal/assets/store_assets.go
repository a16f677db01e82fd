package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Add registers a new main image file in the catalog.
func (s *Store) Add(ctx context.Context, sourcePath, mimeType string, fileSize int64) (*Asset, error) {
	if strings.TrimSpace(sourcePath) == "" {
		return nil, errors.New("source path required")
	}
	timestamp := timestampNow()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO assets (source_path, mime_type, file_size, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		sourcePath,
		mimeType,
		fileSize,
		timestamp,
		timestamp,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, sourcePath)
		}
		return nil, fmt.Errorf("insert asset: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// AddVariant registers a derived-size variant for an asset.
func (s *Store) AddVariant(ctx context.Context, assetID int64, name, path string, fileSize int64) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("variant path required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO variants (asset_id, name, path, file_size) VALUES (?, ?, ?, ?)`,
		assetID,
		name,
		path,
		fileSize,
	)
	if err != nil {
		return fmt.Errorf("insert variant: %w", err)
	}
	return nil
}

// GetByID fetches an asset by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Asset, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = ?`, id)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return asset, nil
}

// FindByPath returns the asset registered at sourcePath, or nil.
func (s *Store) FindByPath(ctx context.Context, sourcePath string) (*Asset, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE source_path = ?`, sourcePath)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find asset by path: %w", err)
	}
	return asset, nil
}

// Variants returns the derived-size variants of an asset in insertion
// order.
func (s *Store) Variants(ctx context.Context, assetID int64) ([]Variant, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, asset_id, name, path, file_size FROM variants WHERE asset_id = ? ORDER BY id`,
		assetID,
	)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var variants []Variant
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.AssetID, &v.Name, &v.Path, &v.FileSize); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// ListUnprocessed returns up to limit assets lacking a terminal
// conversion result, ordered by ascending id. This ordering plus the
// result-presence filter is what makes chunked processing resumable
// without a persisted cursor.
func (s *Store) ListUnprocessed(ctx context.Context, limit int) ([]*Asset, error) {
	if limit < 1 {
		limit = 1
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+assetColumns+` FROM assets WHERE result_status IS NULL ORDER BY id ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed: %w", err)
	}
	defer rows.Close()

	var result []*Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, asset)
	}
	return result, rows.Err()
}

// List returns all cataloged assets ordered by id.
func (s *Store) List(ctx context.Context) ([]*Asset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var result []*Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, asset)
	}
	return result, rows.Err()
}

// CountAll returns the total number of cataloged assets.
func (s *Store) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM assets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return count, nil
}

// CountProcessed returns the number of assets with a terminal result.
func (s *Store) CountProcessed(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(result_status) FROM assets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count processed assets: %w", err)
	}
	return count, nil
}

// UpdateFileSize refreshes the recorded byte size of the main file.
func (s *Store) UpdateFileSize(ctx context.Context, id, fileSize int64) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE assets SET file_size = ?, updated_at = ? WHERE id = ?`,
		fileSize,
		timestampNow(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update file size: %w", err)
	}
	return nil
}

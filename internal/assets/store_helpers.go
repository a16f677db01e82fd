package assets

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

const assetColumns = "id, source_path, mime_type, file_size, created_at, updated_at, result_status, result_json, originals_deleted"

func scanAsset(scanner interface{ Scan(dest ...any) error }) (*Asset, error) {
	var (
		id               int64
		sourcePath       string
		mimeType         string
		fileSize         int64
		createdRaw       string
		updatedRaw       string
		resultStatus     sql.NullString
		resultJSON       sql.NullString
		originalsDeleted int64
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&mimeType,
		&fileSize,
		&createdRaw,
		&updatedRaw,
		&resultStatus,
		&resultJSON,
		&originalsDeleted,
	); err != nil {
		return nil, err
	}

	asset := &Asset{
		ID:               id,
		SourcePath:       sourcePath,
		MimeType:         mimeType,
		FileSize:         fileSize,
		OriginalsDeleted: originalsDeleted != 0,
	}
	if resultStatus.Valid {
		asset.ResultStatus = Status(resultStatus.String)
	}
	if resultJSON.Valid && resultJSON.String != "" {
		var result Result
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err == nil {
			asset.Result = &result
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		asset.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		asset.UpdatedAt = updated
	}
	return asset, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func timestampNow() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

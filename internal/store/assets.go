package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const assetColumns = "id, sha256, source_url, content_type, size_bytes, path, created_at"

func scanAsset(scanner rowScanner) (*Asset, error) {
	var (
		asset      Asset
		createdRaw sql.NullString
	)
	if err := scanner.Scan(
		&asset.ID,
		&asset.SHA256,
		&asset.SourceURL,
		&asset.ContentType,
		&asset.SizeBytes,
		&asset.Path,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		asset.CreatedAt = created
	}
	return &asset, nil
}

// UpsertAsset records asset metadata keyed by content hash. When the same
// content was stored before, the existing row is returned unchanged.
func (s *Store) UpsertAsset(ctx context.Context, asset Asset) (*Asset, error) {
	sum := strings.ToLower(strings.TrimSpace(asset.SHA256))
	if sum == "" {
		return nil, errors.New("upsert asset: sha256 required")
	}
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO assets (id, sha256, source_url, content_type, size_bytes, path, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(sha256) DO NOTHING`,
		newID(),
		sum,
		asset.SourceURL,
		asset.ContentType,
		asset.SizeBytes,
		asset.Path,
		nowString(),
	); err != nil {
		return nil, fmt.Errorf("insert asset: %w", err)
	}
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+assetColumns+" FROM assets WHERE sha256 = ?", sum)
	stored, err := scanAsset(row)
	if err != nil {
		return nil, fmt.Errorf("load asset: %w", err)
	}
	return stored, nil
}

// GetAsset returns the asset with the internal id, or nil.
func (s *Store) GetAsset(ctx context.Context, id string) (*Asset, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+assetColumns+" FROM assets WHERE id = ?", id)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return asset, nil
}

//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
)

// SaveMetadata saves load metadata as part of the transaction.
func (t *Tx) SaveMetadata(ctx context.Context, entries map[string]string) error {
	// Create table if it doesn't exist
	_, err := t.tx.Exec(ctx, createMetadataTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Insert or update metadata
	batch := &pgx.Batch{}
	for _, key := range keys {
		batch.Queue(`
            INSERT INTO pipeline_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, entries[key])
	}
	if err := t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Debug().
		Int("entries", len(entries)).
		Msg("Saved metadata")

	return nil
}

// Metadata retrieves all metadata as a map.
func (s *Store) Metadata(ctx context.Context) (map[string]string, error) {
	exists, err := s.metadataExists(ctx)
	if err != nil {
		return nil, err
	}
	metadata := make(map[string]string)
	if !exists {
		return metadata, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT key, value FROM pipeline_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// metadataExists checks if the metadata table exists.
func (s *Store) metadataExists(ctx context.Context) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1
        )
    `, store.MetadataTable).Scan(&exists)
	return exists, err
}

// formatValue renders a pgx value, unwrapping NUMERIC.
func formatValue(v any) string {
	if n, ok := v.(pgtype.Numeric); ok {
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		return store.FormatValue(f.Float64)
	}
	return store.FormatValue(v)
}

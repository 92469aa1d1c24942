// Package sqlite is Backend B: an embedded record-oriented store with one row
// per album, keyed by album id, with secondary indexes on name and creation
// time. Each row embeds the album's pennies as a single serialized unit.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Foetwenny/Penny-collection/internal/domain"
	"github.com/Foetwenny/Penny-collection/internal/storage"
)

const nameMetaKey = "collection_name"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// LoadAll reads every album row in display order inside one read transaction.
func (s *Store) LoadAll(ctx context.Context) (*domain.Collection, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	c := domain.NewCollection()

	var name string
	err = tx.QueryRowContext(ctx, `
		SELECT value FROM collection_meta WHERE key = ?
	`, nameMetaKey).Scan(&name)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("load collection name: %w", err)
	}
	if name != "" {
		c.Name = name
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT data FROM albums ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load albums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		album := &domain.Album{}
		if err := json.Unmarshal(data, album); err != nil {
			return nil, fmt.Errorf("%w: album record: %v", storage.ErrMalformed, err)
		}
		c.Albums = append(c.Albums, album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}

	return c, nil
}

// SaveAll replaces the persisted collection in a single transaction: clear
// every album row, insert the full set, update the display name. A reader
// never observes a partial album set.
func (s *Store) SaveAll(ctx context.Context, c *domain.Collection) (storage.Fidelity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.FidelityFull, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM albums`); err != nil {
		return storage.FidelityFull, fmt.Errorf("clear albums: %w", err)
	}

	for i, album := range c.Albums {
		data, err := json.Marshal(album)
		if err != nil {
			return storage.FidelityFull, fmt.Errorf("marshal album %s: %w", album.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO albums (id, name, position, created_at, data) VALUES (?, ?, ?, ?, ?)
		`, album.ID, album.Name, i, album.CreatedAt, data)
		if err != nil {
			return storage.FidelityFull, fmt.Errorf("insert album %s: %w", album.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO collection_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, nameMetaKey, c.Name)
	if err != nil {
		return storage.FidelityFull, fmt.Errorf("save collection name: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return storage.FidelityFull, fmt.Errorf("commit: %w", err)
	}
	return storage.FidelityFull, nil
}

// Count returns the number of persisted albums. The migration procedure uses
// it to decide whether the store has already been adopted.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM albums`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count albums: %w", err)
	}
	return n, nil
}

// Package migration moves a collection from the legacy key-value store into
// the sqlite backend exactly once, with no loss and no duplication.
package migration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Foetwenny/Penny-collection/internal/domain"
	"github.com/Foetwenny/Penny-collection/internal/storage"
	"github.com/Foetwenny/Penny-collection/internal/storage/localstore"
)

// legacyKeys are every key the app has stored albums under across its
// revisions, newest first. The first well-formed hit wins.
var legacyKeys = []string{localstore.AlbumsKey, "pennyCollection"}

// Result reports what the migration did, so the UI layer can notify the user.
type Result struct {
	Performed bool
	Albums    int
	Key       string
}

// destination is the subset of the sqlite store the migration needs.
type destination interface {
	storage.Backend
	Count(ctx context.Context) (int, error)
}

// Run migrates legacy data into dst if dst holds no albums yet. The legacy
// store is left untouched as a retained backup. Missing or malformed legacy
// data is a no-op, never an error: absence is the common case for new users.
// Because a populated destination short-circuits, re-running can never merge
// or duplicate albums.
func Run(ctx context.Context, kv *localstore.KV, dst destination, logger *slog.Logger) (Result, error) {
	count, err := dst.Count(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("check destination: %w", err)
	}
	if count > 0 {
		logger.Debug("skipping legacy migration, destination already populated", "albums", count)
		return Result{}, nil
	}

	for _, key := range legacyKeys {
		raw, ok := kv.Get(key)
		if !ok || raw == "" {
			continue
		}

		albums, err := domain.DecodeAlbums([]byte(raw))
		if err != nil {
			logger.Warn("legacy data failed validation, leaving it alone", "key", key, "error", err)
			continue
		}
		if len(albums) == 0 {
			continue
		}

		c := domain.NewCollection()
		c.Albums = albums
		if name, ok := kv.Get(localstore.NameKey); ok && name != "" {
			c.Name = name
		}

		if _, err := dst.SaveAll(ctx, c); err != nil {
			return Result{}, fmt.Errorf("migrate legacy albums: %w", err)
		}

		logger.Info("migrated legacy collection", "key", key, "albums", len(albums))
		return Result{Performed: true, Albums: len(albums), Key: key}, nil
	}

	return Result{}, nil
}

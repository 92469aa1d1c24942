package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Foetwenny/Penny-collection/internal/domain"
	"github.com/Foetwenny/Penny-collection/internal/media"
	"github.com/Foetwenny/Penny-collection/internal/storage"
)

// Storage keys. AlbumsKey matches the key the original app wrote, so a store
// file produced by the legacy revisions loads unchanged.
const (
	AlbumsKey = "pennyAlbums"
	NameKey   = "pennyCollectionName"
)

// Store implements storage.Backend over a quota-limited KV. When a save does
// not fit, it degrades in order: recompress every penny image, then strip
// images entirely, then give up with storage.ErrQuotaExceeded. The caller's
// collection is never mutated; degradation works on a deep copy.
type Store struct {
	kv     *KV
	logger *slog.Logger
}

func New(kv *KV, logger *slog.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

func (s *Store) LoadAll(ctx context.Context) (*domain.Collection, error) {
	c := domain.NewCollection()
	if name, ok := s.kv.Get(NameKey); ok && name != "" {
		c.Name = name
	}

	raw, ok := s.kv.Get(AlbumsKey)
	if !ok || raw == "" {
		return c, nil
	}

	albums, err := domain.DecodeAlbums([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrMalformed, err)
	}
	c.Albums = albums
	return c, nil
}

func (s *Store) SaveAll(ctx context.Context, c *domain.Collection) (storage.Fidelity, error) {
	if err := s.write(c.Albums, c.Name); err == nil {
		return storage.FidelityFull, nil
	} else if !errors.Is(err, storage.ErrQuotaExceeded) {
		return storage.FidelityFull, err
	}

	// Over quota. Recompress images on a copy and retry.
	reduced := c.Clone()
	recompressed := recompressImages(reduced)
	s.logger.Warn("collection over storage quota, recompressing images",
		"albums", len(c.Albums), "images_recompressed", recompressed)

	if err := s.write(reduced.Albums, c.Name); err == nil {
		return storage.FidelityRecompressed, nil
	} else if !errors.Is(err, storage.ErrQuotaExceeded) {
		return storage.FidelityFull, err
	}

	// Still over quota. Drop images, keep every textual field.
	stripped := stripImages(reduced)
	s.logger.Warn("collection still over quota, stripping images",
		"albums", len(c.Albums), "images_stripped", stripped)

	if err := s.write(reduced.Albums, c.Name); err == nil {
		return storage.FidelityStripped, nil
	} else if !errors.Is(err, storage.ErrQuotaExceeded) {
		return storage.FidelityFull, err
	}

	s.logger.Error("collection cannot fit in storage quota even without images",
		"albums", len(c.Albums), "pennies", c.PennyCount())
	return storage.FidelityFull, fmt.Errorf("save collection: %w", storage.ErrQuotaExceeded)
}

// write persists the albums entry and the name entry as one unit, so a quota
// failure at any chain step leaves the previously stored collection whole.
func (s *Store) write(albums []*domain.Album, name string) error {
	data, err := json.Marshal(albums)
	if err != nil {
		return fmt.Errorf("marshal albums: %w", err)
	}
	return s.kv.SetAll(map[string]string{
		AlbumsKey: string(data),
		NameKey:   name,
	})
}

// recompressImages re-encodes every embedded penny image in place and returns
// how many were changed. Images that cannot be decoded (or external URLs) are
// left alone; they cannot be reduced.
func recompressImages(c *domain.Collection) int {
	n := 0
	for _, a := range c.Albums {
		for _, p := range a.Pennies {
			if !strings.HasPrefix(p.ImageData, "data:") {
				continue
			}
			out, err := media.Recompress(p.ImageData)
			if err != nil || len(out) >= len(p.ImageData) {
				continue
			}
			p.ImageData = out
			n++
		}
	}
	return n
}

func stripImages(c *domain.Collection) int {
	n := 0
	for _, a := range c.Albums {
		for _, p := range a.Pennies {
			if p.ImageData != "" {
				p.ImageData = ""
				n++
			}
		}
	}
	return n
}

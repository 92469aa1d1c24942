package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Foetwenny/Penny-collection/internal/domain"
	"github.com/Foetwenny/Penny-collection/internal/media"
	"github.com/Foetwenny/Penny-collection/internal/storage"
	"github.com/Foetwenny/Penny-collection/internal/vision"
)

var (
	ErrAlbumNotFound       = errors.New("album not found")
	ErrPennyNotFound       = errors.New("penny not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrMalformedImport     = errors.New("malformed import document")
	ErrAnalysisUnavailable = errors.New("ai analysis not configured")
)

// CollectionService owns the in-memory collection. All reads and mutations go
// through it; nothing else holds collection state. Every mutation is applied
// to a copy, persisted via the backend, and only swapped in on success, so a
// failed save never corrupts the working collection.
type CollectionService struct {
	mu         sync.Mutex
	backend    storage.Backend
	analyzer   vision.Analyzer // nil when AI analysis is not configured
	logger     *slog.Logger
	collection *domain.Collection
}

func New(backend storage.Backend, analyzer vision.Analyzer, logger *slog.Logger) *CollectionService {
	return &CollectionService{
		backend:    backend,
		analyzer:   analyzer,
		logger:     logger,
		collection: domain.NewCollection(),
	}
}

// Load replaces the in-memory collection from the backend. Called once at
// startup.
func (s *CollectionService) Load(ctx context.Context) error {
	c, err := s.backend.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	s.mu.Lock()
	s.collection = c
	s.mu.Unlock()
	s.logger.Info("collection loaded", "albums", len(c.Albums), "pennies", c.PennyCount())
	return nil
}

// Collection returns a deep copy of the current collection for rendering.
func (s *CollectionService) Collection() *domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.Clone()
}

// mutate applies fn to a copy of the collection, persists it, and commits the
// copy on success. The returned fidelity reports any lossy degradation the
// backend applied to fit its quota.
func (s *CollectionService) mutate(ctx context.Context, fn func(c *domain.Collection) error) (storage.Fidelity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.collection.Clone()
	if err := fn(next); err != nil {
		return storage.FidelityFull, err
	}

	fidelity, err := s.backend.SaveAll(ctx, next)
	if err != nil {
		return fidelity, err
	}
	if fidelity.Degraded() {
		// Only the persisted copy lost image data. The in-memory collection
		// keeps its images so the user can still export at full fidelity.
		s.logger.Warn("collection saved with degraded fidelity", "fidelity", fidelity.String())
	}

	s.collection = next
	return fidelity, nil
}

// Rename changes the collection display name. The name is independent of any
// album and survives album deletion.
func (s *CollectionService) Rename(ctx context.Context, name string) (storage.Fidelity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.FidelityFull, fmt.Errorf("%w: collection name required", ErrInvalidInput)
	}
	return s.mutate(ctx, func(c *domain.Collection) error {
		c.Name = name
		return nil
	})
}

// AlbumParams carries user input for creating or updating an album.
type AlbumParams struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	TripDate    string   `json:"tripDate"`
	Location    string   `json:"location"`
	LocationURL string   `json:"locationUrl"`
	ImageURL    string   `json:"imageUrl"`
}

func (p AlbumParams) validate() ([]domain.Category, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("%w: album name required", ErrInvalidInput)
	}
	categories := make([]domain.Category, 0, len(p.Categories))
	for _, raw := range p.Categories {
		c := domain.Category(raw)
		if !c.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, raw)
		}
		categories = append(categories, c)
	}
	return categories, nil
}

func applyAlbumParams(a *domain.Album, p AlbumParams, categories []domain.Category) {
	a.Name = strings.TrimSpace(p.Name)
	a.Description = p.Description
	a.Categories = categories
	a.TripDate = p.TripDate
	a.Location = p.Location
	a.LocationURL = p.LocationURL
	a.ImageURL = p.ImageURL
}

// CreateAlbum adds a new empty album.
func (s *CollectionService) CreateAlbum(ctx context.Context, p AlbumParams) (*domain.Album, storage.Fidelity, error) {
	categories, err := p.validate()
	if err != nil {
		return nil, storage.FidelityFull, err
	}

	var created *domain.Album
	fidelity, err := s.mutate(ctx, func(c *domain.Collection) error {
		album := domain.NewAlbum(strings.TrimSpace(p.Name))
		applyAlbumParams(album, p, categories)
		c.Albums = append(c.Albums, album)
		created = album
		return nil
	})
	if err != nil {
		return nil, fidelity, err
	}
	s.logger.Info("album created", "album_id", created.ID, "name", created.Name)
	return created.Clone(), fidelity, nil
}

// UpdateAlbum replaces the album's editable fields and refreshes updatedAt.
func (s *CollectionService) UpdateAlbum(ctx context.Context, albumID string, p AlbumParams) (*domain.Album, storage.Fidelity, error) {
	categories, err := p.validate()
	if err != nil {
		return nil, storage.FidelityFull, err
	}

	var updated *domain.Album
	fidelity, err := s.mutate(ctx, func(c *domain.Collection) error {
		album := c.Album(albumID)
		if album == nil {
			return ErrAlbumNotFound
		}
		applyAlbumParams(album, p, categories)
		album.Touch()
		updated = album
		return nil
	})
	if err != nil {
		return nil, fidelity, err
	}
	return updated.Clone(), fidelity, nil
}

// DeleteAlbum removes an album and, with it, every penny it holds.
// Irreversible.
func (s *CollectionService) DeleteAlbum(ctx context.Context, albumID string) (storage.Fidelity, error) {
	fidelity, err := s.mutate(ctx, func(c *domain.Collection) error {
		if !c.RemoveAlbum(albumID) {
			return ErrAlbumNotFound
		}
		return nil
	})
	if err == nil {
		s.logger.Info("album deleted", "album_id", albumID)
	}
	return fidelity, err
}

// PennyParams carries user input for creating or updating a penny, whether
// typed manually or prefilled from an AI analysis.
type PennyParams struct {
	Name          string `json:"name"`
	Location      string `json:"location"`
	Description   string `json:"description"`
	DateCollected string `json:"dateCollected"`
	Notes         string `json:"notes"`
	ImageData     string `json:"imageData"`
}

func applyPennyParams(p *domain.Penny, params PennyParams) {
	p.Name = strings.TrimSpace(params.Name)
	p.Location = params.Location
	p.Description = params.Description
	p.DateCollected = params.DateCollected
	p.Notes = params.Notes
	p.ImageData = params.ImageData
}

// AddPenny creates a penny inside an existing album.
func (s *CollectionService) AddPenny(ctx context.Context, albumID string, params PennyParams) (*domain.Penny, storage.Fidelity, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, storage.FidelityFull, fmt.Errorf("%w: penny name required", ErrInvalidInput)
	}

	var created *domain.Penny
	fidelity, err := s.mutate(ctx, func(c *domain.Collection) error {
		album := c.Album(albumID)
		if album == nil {
			return ErrAlbumNotFound
		}
		penny := domain.NewPenny(strings.TrimSpace(params.Name))
		applyPennyParams(penny, params)
		album.AddPenny(penny)
		created = penny
		return nil
	})
	if err != nil {
		return nil, fidelity, err
	}
	s.logger.Info("penny added", "album_id", albumID, "penny_id", created.ID)
	cp := *created
	return &cp, fidelity, nil
}

// UpdatePenny replaces a penny's fields and refreshes its timestamps and the
// album's.
func (s *CollectionService) UpdatePenny(ctx context.Context, albumID, pennyID string, params PennyParams) (*domain.Penny, storage.Fidelity, error) {
	var updated *domain.Penny
	fidelity, err := s.mutate(ctx, func(c *domain.Collection) error {
		album := c.Album(albumID)
		if album == nil {
			return ErrAlbumNotFound
		}
		penny := album.Penny(pennyID)
		if penny == nil {
			return ErrPennyNotFound
		}
		applyPennyParams(penny, params)
		penny.UpdatedAt = time.Now().UTC()
		album.Touch()
		updated = penny
		return nil
	})
	if err != nil {
		return nil, fidelity, err
	}
	cp := *updated
	return &cp, fidelity, nil
}

// DeletePenny removes a single penny from its album.
func (s *CollectionService) DeletePenny(ctx context.Context, albumID, pennyID string) (storage.Fidelity, error) {
	return s.mutate(ctx, func(c *domain.Collection) error {
		album := c.Album(albumID)
		if album == nil {
			return ErrAlbumNotFound
		}
		if !album.RemovePenny(pennyID) {
			return ErrPennyNotFound
		}
		return nil
	})
}

// Analyze sends an embedded penny image to the AI collaborator and returns
// its suggestion. Failures are reported upward; the user falls back to manual
// entry.
func (s *CollectionService) Analyze(ctx context.Context, imageDataURI string) (*vision.Analysis, error) {
	if s.analyzer == nil {
		return nil, ErrAnalysisUnavailable
	}
	mimeType, data, err := media.ParseDataURI(imageDataURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	analysis, err := s.analyzer.Analyze(ctx, bytes.NewReader(data), mimeType)
	if err != nil {
		return nil, fmt.Errorf("analyze image: %w", err)
	}
	return analysis, nil
}

// PennyFromAnalysis prefills penny fields from an analysis the way the
// original entry form did: the name defaults to the identified location.
func PennyFromAnalysis(a *vision.Analysis, imageDataURI string) PennyParams {
	name := "Elongated Penny"
	if a.Location != "" {
		name = "Elongated Penny - " + a.Location
	}
	return PennyParams{
		Name:          name,
		Location:      a.Location,
		Description:   a.Description,
		DateCollected: time.Now().UTC().Format("2006-01-02"),
		ImageData:     imageDataURI,
	}
}

// PennyMatch pairs a found penny with the album holding it.
type PennyMatch struct {
	AlbumID   string        `json:"albumId"`
	AlbumName string        `json:"albumName"`
	Penny     *domain.Penny `json:"penny"`
}

// SearchPennies scans every album for pennies whose textual fields contain
// the query, case-insensitively.
func (s *CollectionService) SearchPennies(query string) []PennyMatch {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []PennyMatch
	for _, album := range s.collection.Albums {
		for _, penny := range album.Pennies {
			haystack := strings.ToLower(penny.Name + " " + penny.Location + " " + penny.Description + " " + penny.Notes)
			if strings.Contains(haystack, q) {
				cp := *penny
				matches = append(matches, PennyMatch{AlbumID: album.ID, AlbumName: album.Name, Penny: &cp})
			}
		}
	}
	return matches
}

// ExportDocument is the user-facing backup format.
type ExportDocument struct {
	CollectionName string          `json:"collectionName"`
	Albums         []*domain.Album `json:"albums"`
	ExportDate     time.Time       `json:"exportDate"`
	Version        int             `json:"version"`
}

// Export serializes the whole collection to a single JSON document.
func (s *CollectionService) Export() ([]byte, error) {
	s.mu.Lock()
	c := s.collection.Clone()
	s.mu.Unlock()

	doc := ExportDocument{
		CollectionName: c.Name,
		Albums:         c.Albums,
		ExportDate:     time.Now().UTC(),
		Version:        domain.SchemaVersion,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}

// Import replaces the entire collection from an export document. The document
// is validated as a whole before anything is applied: if any album entry is
// missing its id, name, or pennies array, the import is rejected and the
// existing collection is left untouched.
func (s *CollectionService) Import(ctx context.Context, data []byte) (int, storage.Fidelity, error) {
	var doc struct {
		CollectionName string          `json:"collectionName"`
		Albums         json.RawMessage `json:"albums"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, storage.FidelityFull, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if len(doc.Albums) == 0 || string(doc.Albums) == "null" {
		return 0, storage.FidelityFull, fmt.Errorf("%w: missing albums", ErrMalformedImport)
	}

	albums, err := domain.DecodeAlbums(doc.Albums)
	if err != nil {
		return 0, storage.FidelityFull, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}

	fidelity, err := s.mutate(ctx, func(c *domain.Collection) error {
		if doc.CollectionName != "" {
			c.Name = doc.CollectionName
		}
		c.Albums = albums
		return nil
	})
	if err != nil {
		return 0, fidelity, err
	}
	s.logger.Info("collection imported", "albums", len(albums))
	return len(albums), fidelity, nil
}

package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// SchemaVersion is the current on-disk/export schema. Version 1 covers the
// legacy localStorage revisions: a single `category` string per album,
// optional trip fields absent, penny images sometimes stored under `image`,
// and numeric millisecond ids.
const SchemaVersion = 2

// flexID accepts both string ids and the numeric Date.now() ids the earliest
// revision produced.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type legacyPenny struct {
	ID            flexID `json:"id"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	Description   string `json:"description"`
	Date          string `json:"date"`
	DateCollected string `json:"dateCollected"`
	Notes         string `json:"notes"`
	Image         string `json:"image"`
	ImageData     string `json:"imageData"`
	CreatedAt     string `json:"createdAt"`
	AddedAt       string `json:"addedAt"`
	UpdatedAt     string `json:"updatedAt"`
}

type legacyAlbum struct {
	ID          flexID         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Categories  []string       `json:"categories"`
	TripDate    string         `json:"tripDate"`
	Location    string         `json:"location"`
	LocationURL string         `json:"locationUrl"`
	ImageURL    string         `json:"imageUrl"`
	Pennies     *[]legacyPenny `json:"pennies"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

// DecodeAlbums parses a JSON array of album records in any schema revision
// and normalizes it to the current schema. It enforces the minimal shape
// required of externally supplied data: every element must carry an id, a
// name, and a pennies array. Structural failures return an error; callers
// decide whether that means "reject the import" or "no legacy data to
// migrate".
func DecodeAlbums(data []byte) ([]*Album, error) {
	var raw []legacyAlbum
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse albums: %w", err)
	}

	albums := make([]*Album, 0, len(raw))
	for i, la := range raw {
		if la.ID == "" {
			return nil, fmt.Errorf("album %d: missing id", i)
		}
		if la.Name == "" {
			return nil, fmt.Errorf("album %d: missing name", i)
		}
		if la.Pennies == nil {
			return nil, fmt.Errorf("album %d: missing pennies array", i)
		}
		albums = append(albums, normalizeAlbum(la))
	}
	return albums, nil
}

func normalizeAlbum(la legacyAlbum) *Album {
	now := time.Now().UTC()
	createdAt := parseTime(la.CreatedAt, now)

	a := &Album{
		ID:          string(la.ID),
		Name:        la.Name,
		Description: la.Description,
		Categories:  normalizeCategories(la.Category, la.Categories),
		TripDate:    normalizeDate(la.TripDate),
		Location:    la.Location,
		LocationURL: la.LocationURL,
		ImageURL:    la.ImageURL,
		Pennies:     make([]*Penny, 0, len(*la.Pennies)),
		CreatedAt:   createdAt,
		UpdatedAt:   parseTime(la.UpdatedAt, createdAt),
	}

	for _, lp := range *la.Pennies {
		p := normalizePenny(lp, createdAt)
		a.Pennies = append(a.Pennies, p)
		// Keep the album invariant even for drifted legacy data.
		if p.UpdatedAt.After(a.UpdatedAt) {
			a.UpdatedAt = p.UpdatedAt
		}
	}
	return a
}

func normalizePenny(lp legacyPenny, albumCreated time.Time) *Penny {
	imageData := lp.ImageData
	if imageData == "" {
		imageData = lp.Image
	}
	addedAt := parseTime(lp.AddedAt, parseTime(lp.CreatedAt, albumCreated))

	id := string(lp.ID)
	if id == "" {
		id = NewID()
	}

	return &Penny{
		ID:            id,
		Name:          lp.Name,
		Location:      lp.Location,
		Description:   lp.Description,
		DateCollected: normalizeDate(lp.DateCollected),
		Notes:         lp.Notes,
		ImageData:     imageData,
		AddedAt:       addedAt,
		UpdatedAt:     parseTime(lp.UpdatedAt, addedAt),
	}
}

// normalizeCategories folds the old single `category` string into the
// `categories` set, dropping values outside the vocabulary. A legacy album
// may legitimately end up with zero categories.
func normalizeCategories(single string, many []string) []Category {
	seen := make(map[Category]bool)
	var out []Category
	add := func(s string) {
		c := Category(s)
		if c.Valid() && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, s := range many {
		add(s)
	}
	if len(out) == 0 && single != "" {
		add(single)
	}
	return out
}

// normalizeDate keeps date-only values as YYYY-MM-DD, truncating full
// timestamps the old UI occasionally wrote into date fields.
func normalizeDate(s string) string {
	if len(s) >= 10 {
		if _, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return s[:10]
		}
	}
	return s
}

func parseTime(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	// Numeric millisecond timestamps from the earliest revision.
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC()
	}
	return fallback
}

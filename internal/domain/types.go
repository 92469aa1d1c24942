package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCollectionName is used when no display name has been persisted.
const DefaultCollectionName = "My Penny Collection"

// Category is one value from the closed album category vocabulary.
type Category string

const (
	CategoryThemePark    Category = "theme-park"
	CategoryNationalPark Category = "national-park"
	CategoryCityLandmark Category = "city-landmark"
	CategoryMuseum       Category = "museum"
	CategoryZooAquarium  Category = "zoo-aquarium"
	CategoryOther        Category = "other"
)

var categoryNames = map[Category]string{
	CategoryThemePark:    "Theme Parks",
	CategoryNationalPark: "National Parks",
	CategoryCityLandmark: "City Landmarks",
	CategoryMuseum:       "Museums",
	CategoryZooAquarium:  "Zoos & Aquariums",
	CategoryOther:        "Other",
}

// Valid reports whether c is part of the vocabulary.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// DisplayName returns the human-readable label for c. Unknown values are
// returned as-is so legacy data still renders.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// Collection is the root aggregate and the unit of persistence: a display
// name plus all albums in display order.
type Collection struct {
	Name   string   `json:"collectionName"`
	Albums []*Album `json:"albums"`
}

// Album groups the pennies from one trip or theme. Pennies are owned
// exclusively by their album and are persisted embedded in it, never as
// independent records.
type Album struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Categories  []Category `json:"categories,omitempty"`
	// TripDate and the penny date fields are calendar dates stored as
	// YYYY-MM-DD strings. No timezone conversion is ever applied.
	TripDate    string    `json:"tripDate,omitempty"`
	Location    string    `json:"location,omitempty"`
	LocationURL string    `json:"locationUrl,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Pennies     []*Penny  `json:"pennies"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Penny is a single cataloged souvenir. ImageData is an embedded data URI
// and dominates the serialized size of a collection.
type Penny struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Location      string    `json:"location,omitempty"`
	Description   string    `json:"description,omitempty"`
	DateCollected string    `json:"dateCollected,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	ImageData     string    `json:"imageData,omitempty"`
	AddedAt       time.Time `json:"addedAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewID returns a collision-resistant record identifier. The original app
// used millisecond timestamps, which collide under rapid creation.
func NewID() string {
	return uuid.NewString()
}

// NewCollection returns an empty collection with the default display name.
func NewCollection() *Collection {
	return &Collection{Name: DefaultCollectionName, Albums: []*Album{}}
}

// NewAlbum creates an empty named album.
func NewAlbum(name string) *Album {
	now := time.Now().UTC()
	return &Album{
		ID:        NewID(),
		Name:      name,
		Pennies:   []*Penny{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewPenny creates a penny record. The caller attaches it to an album via
// Album.AddPenny so the album's updatedAt stays consistent.
func NewPenny(name string) *Penny {
	now := time.Now().UTC()
	return &Penny{
		ID:        NewID(),
		Name:      name,
		AddedAt:   now,
		UpdatedAt: now,
	}
}

// Touch refreshes the album's updatedAt. Every mutation to the album or any
// of its pennies goes through a path that calls this, keeping the invariant
// updatedAt >= every penny's addedAt/updatedAt.
func (a *Album) Touch() {
	a.UpdatedAt = time.Now().UTC()
}

// AddPenny appends p and touches the album.
func (a *Album) AddPenny(p *Penny) {
	a.Pennies = append(a.Pennies, p)
	a.Touch()
}

// Penny returns the penny with the given id, or nil.
func (a *Album) Penny(id string) *Penny {
	for _, p := range a.Pennies {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// RemovePenny deletes the penny with the given id and touches the album.
// It reports whether a penny was removed.
func (a *Album) RemovePenny(id string) bool {
	for i, p := range a.Pennies {
		if p.ID == id {
			a.Pennies = append(a.Pennies[:i], a.Pennies[i+1:]...)
			a.Touch()
			return true
		}
	}
	return false
}

// Album returns the album with the given id, or nil.
func (c *Collection) Album(id string) *Album {
	for _, a := range c.Albums {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// RemoveAlbum deletes the album with the given id, cascading to its embedded
// pennies. Reports whether an album was removed. The collection display name
// is unaffected.
func (c *Collection) RemoveAlbum(id string) bool {
	for i, a := range c.Albums {
		if a.ID == id {
			c.Albums = append(c.Albums[:i], c.Albums[i+1:]...)
			return true
		}
	}
	return false
}

// PennyCount returns the total number of pennies across all albums.
func (c *Collection) PennyCount() int {
	n := 0
	for _, a := range c.Albums {
		n += len(a.Pennies)
	}
	return n
}

// Clone returns a deep copy. Storage degradation and mutation rollback both
// reduce or mutate a copy while the caller's collection stays untouched.
func (c *Collection) Clone() *Collection {
	out := &Collection{Name: c.Name, Albums: make([]*Album, 0, len(c.Albums))}
	for _, a := range c.Albums {
		out.Albums = append(out.Albums, a.Clone())
	}
	return out
}

// Clone returns a deep copy of the album and its pennies.
func (a *Album) Clone() *Album {
	cp := *a
	cp.Categories = append([]Category(nil), a.Categories...)
	cp.Pennies = make([]*Penny, 0, len(a.Pennies))
	for _, p := range a.Pennies {
		pc := *p
		cp.Pennies = append(cp.Pennies, &pc)
	}
	return &cp
}

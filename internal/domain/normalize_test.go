package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAlbumsCurrentSchema(t *testing.T) {
	data := []byte(`[{
		"id": "a1",
		"name": "Disneyland 2024",
		"categories": ["theme-park", "other"],
		"tripDate": "2024-06-01",
		"pennies": [{
			"id": "p1",
			"name": "Mickey",
			"imageData": "data:image/png;base64,AAAA",
			"addedAt": "2024-06-02T10:00:00Z",
			"updatedAt": "2024-06-03T10:00:00Z"
		}],
		"createdAt": "2024-06-01T08:00:00Z",
		"updatedAt": "2024-06-03T10:00:00Z"
	}]`)

	albums, err := DecodeAlbums(data)
	require.NoError(t, err)
	require.Len(t, albums, 1)

	a := albums[0]
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, []Category{CategoryThemePark, CategoryOther}, a.Categories)
	assert.Equal(t, "2024-06-01", a.TripDate)
	require.Len(t, a.Pennies, 1)
	assert.Equal(t, "data:image/png;base64,AAAA", a.Pennies[0].ImageData)
}

func TestDecodeAlbumsLegacySingleCategory(t *testing.T) {
	data := []byte(`[{"id": "a1", "name": "Zoo Trip", "category": "zoo-aquarium", "pennies": []}]`)

	albums, err := DecodeAlbums(data)
	require.NoError(t, err)
	assert.Equal(t, []Category{CategoryZooAquarium}, albums[0].Categories)
}

func TestDecodeAlbumsLegacyUnknownCategoryDropped(t *testing.T) {
	data := []byte(`[{"id": "a1", "name": "Trip", "category": "space-station", "pennies": []}]`)

	albums, err := DecodeAlbums(data)
	require.NoError(t, err)
	assert.Empty(t, albums[0].Categories)
}

func TestDecodeAlbumsLegacyPennyImageField(t *testing.T) {
	data := []byte(`[{
		"id": "a1", "name": "Trip",
		"pennies": [{"id": "p1", "name": "Bison", "image": "data:image/jpeg;base64,BBBB"}]
	}]`)

	albums, err := DecodeAlbums(data)
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,BBBB", albums[0].Pennies[0].ImageData)
}

func TestDecodeAlbumsNumericIDs(t *testing.T) {
	// The earliest revision used Date.now() numbers as ids.
	data := []byte(`[{"id": 1721459000000, "name": "Old Trip", "pennies": [{"id": 1721459000001, "name": "Penny"}]}]`)

	albums, err := DecodeAlbums(data)
	require.NoError(t, err)
	assert.Equal(t, "1721459000000", albums[0].ID)
	assert.Equal(t, "1721459000001", albums[0].Pennies[0].ID)
}

func TestDecodeAlbumsMissingPenniesRejected(t *testing.T) {
	data := []byte(`[{"id": "a1", "name": "Trip"}]`)
	_, err := DecodeAlbums(data)
	assert.Error(t, err)
}

func TestDecodeAlbumsMissingIDRejected(t *testing.T) {
	data := []byte(`[{"name": "Trip", "pennies": []}]`)
	_, err := DecodeAlbums(data)
	assert.Error(t, err)
}

func TestDecodeAlbumsNotAnArray(t *testing.T) {
	_, err := DecodeAlbums([]byte(`{"id": "a1"}`))
	assert.Error(t, err)
}

func TestDecodeAlbumsBackfillsTimestamps(t *testing.T) {
	data := []byte(`[{"id": "a1", "name": "Trip", "pennies": [{"id": "p1", "name": "Penny"}]}]`)

	albums, err := DecodeAlbums(data)
	require.NoError(t, err)

	a := albums[0]
	assert.False(t, a.CreatedAt.IsZero())
	assert.False(t, a.Pennies[0].AddedAt.IsZero())
	assert.False(t, a.UpdatedAt.Before(a.Pennies[0].UpdatedAt))
}

func TestDecodeAlbumsAlbumUpdatedAtCoversPennies(t *testing.T) {
	// Drifted legacy data: penny updated after the album's recorded
	// updatedAt. Normalization restores the invariant.
	data := []byte(`[{
		"id": "a1", "name": "Trip",
		"createdAt": "2023-01-01T00:00:00Z",
		"updatedAt": "2023-01-01T00:00:00Z",
		"pennies": [{"id": "p1", "name": "Penny", "addedAt": "2024-05-05T00:00:00Z", "updatedAt": "2024-05-06T00:00:00Z"}]
	}]`)

	albums, err := DecodeAlbums(data)
	require.NoError(t, err)

	want := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, albums[0].UpdatedAt)
}

func TestNormalizeDateTruncatesTimestamps(t *testing.T) {
	data := []byte(`[{
		"id": "a1", "name": "Trip", "tripDate": "2024-06-01T00:00:00.000Z",
		"pennies": []
	}]`)

	albums, err := DecodeAlbums(data)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", albums[0].TripDate)
}

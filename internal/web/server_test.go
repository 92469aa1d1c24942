package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Foetwenny/Penny-collection/internal/domain"
	"github.com/Foetwenny/Penny-collection/internal/service"
	"github.com/Foetwenny/Penny-collection/internal/storage"
)

type memBackend struct {
	saved *domain.Collection
}

func (b *memBackend) LoadAll(ctx context.Context) (*domain.Collection, error) {
	if b.saved == nil {
		return domain.NewCollection(), nil
	}
	return b.saved.Clone(), nil
}

func (b *memBackend) SaveAll(ctx context.Context, c *domain.Collection) (storage.Fidelity, error) {
	b.saved = c.Clone()
	return storage.FidelityFull, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(&memBackend{}, nil, logger)
	require.NoError(t, svc.Load(context.Background()))
	return NewServer(svc, logger)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// createAlbum posts an album and returns its id.
func createAlbum(t *testing.T, srv *Server, name string) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/albums", `{"name": "`+name+`", "categories": ["theme-park"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Album domain.Album `json:"album"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Album.ID)
	return resp.Album.ID
}

func TestGetCollection(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/collection", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	var c domain.Collection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, domain.DefaultCollectionName, c.Name)
}

func TestCreateAlbumEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/albums", `{"name": "Disneyland 2024", "categories": ["theme-park"], "tripDate": "2024-06-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Album        domain.Album `json:"album"`
		SaveFidelity string       `json:"saveFidelity"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Disneyland 2024", resp.Album.Name)
	assert.Equal(t, "full", resp.SaveFidelity)
}

func TestCreateAlbumRejectsInvalid(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/albums", `{"name": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/albums", `{broken`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/albums", `{"name": "Trip", "categories": ["space-station"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndDeleteAlbum(t *testing.T) {
	srv := newTestServer(t)
	id := createAlbum(t, srv, "Zion")

	rec := doJSON(t, srv, http.MethodPut, "/albums/"+id, `{"name": "Zion National Park"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPut, "/albums/missing", `{"name": "x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/albums/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/albums/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPennyEndpoints(t *testing.T) {
	srv := newTestServer(t)
	albumID := createAlbum(t, srv, "Disneyland")

	rec := doJSON(t, srv, http.MethodPost, "/albums/"+albumID+"/pennies", `{"name": "Mickey", "imageData": "data:image/png;base64,AAAA"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Penny domain.Penny `json:"penny"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	pennyID := resp.Penny.ID
	require.NotEmpty(t, pennyID)

	rec = doJSON(t, srv, http.MethodPut, "/albums/"+albumID+"/pennies/"+pennyID, `{"name": "Mickey Mouse"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/albums/"+albumID+"/pennies/"+pennyID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/albums/"+albumID+"/pennies/"+pennyID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenameCollection(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPut, "/collection/name", `{"name": "Road Trips"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/collection", "")
	var c domain.Collection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "Road Trips", c.Name)
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t)
	albumID := createAlbum(t, srv, "Disneyland")
	rec := doJSON(t, srv, http.MethodPost, "/albums/"+albumID+"/pennies", `{"name": "Mickey"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/search?q=mickey", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var matches []service.PennyMatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "Mickey", matches[0].Penny.Name)

	// No matches is an empty array, not null.
	rec = doJSON(t, srv, http.MethodGet, "/search?q=goofy", "")
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestExportImportEndpoints(t *testing.T) {
	srv := newTestServer(t)
	albumID := createAlbum(t, srv, "Zion")
	rec := doJSON(t, srv, http.MethodPost, "/albums/"+albumID+"/pennies", `{"name": "Arch"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/collection/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "penny-collection.json")
	exported := rec.Body.Bytes()

	fresh := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/collection/import", bytes.NewReader(exported))
	importRec := httptest.NewRecorder()
	fresh.ServeHTTP(importRec, req)
	require.Equal(t, http.StatusOK, importRec.Code)

	var resp struct {
		AlbumsImported int `json:"albumsImported"`
	}
	require.NoError(t, json.Unmarshal(importRec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.AlbumsImported)
}

func TestImportRejectsMalformed(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/collection/import", `{"albums": [{"name": "no id", "pennies": []}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeUnconfigured(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/analyze", `{"imageData": "data:image/png;base64,AAAA"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

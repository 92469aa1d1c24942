package web

import (
	"net/http"

	"github.com/Foetwenny/Penny-collection/internal/service"
)

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var params service.AlbumParams
	if !s.decode(w, r, &params) {
		return
	}

	album, fidelity, err := s.service.CreateAlbum(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"album":        album,
		"saveFidelity": fidelity.String(),
	})
}

func (s *Server) handleUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	var params service.AlbumParams
	if !s.decode(w, r, &params) {
		return
	}

	album, fidelity, err := s.service.UpdateAlbum(r.Context(), r.PathValue("id"), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"album":        album,
		"saveFidelity": fidelity.String(),
	})
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	fidelity, err := s.service.DeleteAlbum(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"saveFidelity": fidelity.String()})
}

package web

import (
	"io"
	"net/http"

	"github.com/Foetwenny/Penny-collection/internal/service"
)

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.Collection())
}

func (s *Server) handleRenameCollection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	fidelity, err := s.service.Rename(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"name":         req.Name,
		"saveFidelity": fidelity.String(),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.Export()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="penny-collection.json"`)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write export", "error", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return
	}

	albums, fidelity, err := s.service.Import(r.Context(), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"albumsImported": albums,
		"saveFidelity":   fidelity.String(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	matches := s.service.SearchPennies(r.URL.Query().Get("q"))
	if matches == nil {
		matches = []service.PennyMatch{}
	}
	s.writeJSON(w, http.StatusOK, matches)
}

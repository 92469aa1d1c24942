package web

import (
	"net/http"

	"github.com/Foetwenny/Penny-collection/internal/service"
)

func (s *Server) handleAddPenny(w http.ResponseWriter, r *http.Request) {
	var params service.PennyParams
	if !s.decode(w, r, &params) {
		return
	}

	penny, fidelity, err := s.service.AddPenny(r.Context(), r.PathValue("id"), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"penny":        penny,
		"saveFidelity": fidelity.String(),
	})
}

func (s *Server) handleUpdatePenny(w http.ResponseWriter, r *http.Request) {
	var params service.PennyParams
	if !s.decode(w, r, &params) {
		return
	}

	penny, fidelity, err := s.service.UpdatePenny(r.Context(), r.PathValue("id"), r.PathValue("pennyID"), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"penny":        penny,
		"saveFidelity": fidelity.String(),
	})
}

func (s *Server) handleDeletePenny(w http.ResponseWriter, r *http.Request) {
	fidelity, err := s.service.DeletePenny(r.Context(), r.PathValue("id"), r.PathValue("pennyID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"saveFidelity": fidelity.String()})
}

// handleAnalyze sends an uploaded image (as a data URI) to the AI
// collaborator and returns its suggested entry. The client decides whether to
// accept it, edit it, or fall back to manual entry.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageData string `json:"imageData"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	analysis, err := s.service.Analyze(r.Context(), req.ImageData)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"location":      analysis.Location,
		"description":   analysis.Description,
		"estimatedDate": analysis.EstimatedDate,
		"suggestion":    service.PennyFromAnalysis(analysis, req.ImageData),
	})
}

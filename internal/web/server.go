// Package web is the JSON surface consumed by the (out of scope) rendering
// layer. It owns no collection state; everything goes through the service.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Foetwenny/Penny-collection/internal/service"
	"github.com/Foetwenny/Penny-collection/internal/storage"
)

// maxBodySize bounds request bodies; penny images arrive embedded as data
// URIs, so the ceiling matches the photo upload limit.
const maxBodySize = 50 * 1024 * 1024 // 50 MB

type Server struct {
	service *service.CollectionService
	mux     *http.ServeMux
	logger  *slog.Logger
}

func NewServer(svc *service.CollectionService, logger *slog.Logger) *Server {
	s := &Server{
		service: svc,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /collection", s.handleGetCollection)
	s.mux.HandleFunc("PUT /collection/name", s.handleRenameCollection)
	s.mux.HandleFunc("GET /collection/export", s.handleExport)
	s.mux.HandleFunc("POST /collection/import", s.handleImport)
	s.mux.HandleFunc("GET /search", s.handleSearch)

	s.mux.HandleFunc("POST /albums", s.handleCreateAlbum)
	s.mux.HandleFunc("PUT /albums/{id}", s.handleUpdateAlbum)
	s.mux.HandleFunc("DELETE /albums/{id}", s.handleDeleteAlbum)

	s.mux.HandleFunc("POST /albums/{id}/pennies", s.handleAddPenny)
	s.mux.HandleFunc("PUT /albums/{id}/pennies/{pennyID}", s.handleUpdatePenny)
	s.mux.HandleFunc("DELETE /albums/{id}/pennies/{pennyID}", s.handleDeletePenny)

	s.mux.HandleFunc("POST /analyze", s.handleAnalyze)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, s)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps service and storage errors onto HTTP statuses. Quota
// exhaustion is 507 so the UI can tell the user their data did not fully
// save while their in-memory collection is still exportable.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrAlbumNotFound), errors.Is(err, service.ErrPennyNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrMalformedImport):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrQuotaExceeded):
		status = http.StatusInsufficientStorage
	case errors.Is(err, service.ErrAnalysisUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, storage.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

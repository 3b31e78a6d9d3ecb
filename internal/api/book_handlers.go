package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/domain"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/http/response"
)

// resolveBookRequest carries one reference variant; exactly one must be set.
type resolveBookRequest struct {
	LocalID    string `json:"local_id,omitempty"`
	ISBN       string `json:"isbn,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

// handleResolveBook resolves a book reference to a canonical local book,
// materializing it from the external catalog when needed.
func (s *Server) handleResolveBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resolveBookRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body", s.logger)
		return
	}

	book, err := s.resolver.Resolve(ctx, domain.BookReference{
		LocalID:    req.LocalID,
		ISBN:       req.ISBN,
		ExternalID: req.ExternalID,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleGetBook returns a canonical book by its local id.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := chi.URLParam(r, "id")

	book, err := s.resolver.Resolve(ctx, domain.BookReference{LocalID: bookID})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleSearchCatalog searches the external catalog, served from the TTL
// cache when warm.
func (s *Server) handleSearchCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	maxResults := 0
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.BadRequest(w, "max_results must be a non-negative integer", s.logger)
			return
		}
		maxResults = parsed
	}

	books, err := s.catalog.Search(ctx, query, maxResults)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"query":   query,
		"results": books,
	}, s.logger)
}

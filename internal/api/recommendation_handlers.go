package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/domain"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/http/response"
)

// generateRecommendationsRequest is the generation payload. UserID is
// optional; empty means the shared anonymous subject.
type generateRecommendationsRequest struct {
	UserID  string               `json:"user_id,omitempty"`
	History []domain.HistoryItem `json:"history"`
}

// handleGenerateRecommendations calls the engine and replaces the subject's
// stored recommendation set.
func (s *Server) handleGenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req generateRecommendationsRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body", s.logger)
		return
	}

	set, err := s.recommendations.Generate(ctx, req.UserID, req.History)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, set, s.logger)
}

// handleGetSavedRecommendations returns the stored set for a subject.
func (s *Server) handleGetSavedRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.URL.Query().Get("user_id")

	set, err := s.recommendations.GetSaved(ctx, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, set, s.logger)
}

// handleEngineHealth proxies the recommendation engine's health endpoint.
// The response is always 200; degraded and unavailable states are carried
// in the payload.
func (s *Server) handleEngineHealth(w http.ResponseWriter, r *http.Request) {
	status := s.recommendations.Health(r.Context())
	response.Success(w, status, s.logger)
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/domain"
	apperrors "github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/errors"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/recengine"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/store/sqlite"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/validation"
)

const engineHint = "make sure the recommendation engine is running"

// RecommendationService orchestrates recommendation generation against the
// external engine and persists the results per subject.
type RecommendationService struct {
	engine            *recengine.Client
	store             *sqlite.Store
	validator         *validation.Validator
	preferredLanguage string
	logger            *slog.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(
	engine *recengine.Client,
	store *sqlite.Store,
	validator *validation.Validator,
	preferredLanguage string,
	logger *slog.Logger,
) *RecommendationService {
	return &RecommendationService{
		engine:            engine,
		store:             store,
		validator:         validator,
		preferredLanguage: preferredLanguage,
		logger:            logger,
	}
}

// historyPayload exists to validate the history slice as a whole.
type historyPayload struct {
	History []domain.HistoryItem `json:"history" validate:"required,min=1,dive"`
}

// Generate calls the engine with the subject's reading history and replaces
// the subject's stored recommendation set with the result. An unreachable or
// unusable engine leaves the prior set untouched.
func (s *RecommendationService) Generate(ctx context.Context, userID string, history []domain.HistoryItem) (*domain.RecommendationSet, error) {
	if len(history) == 0 {
		return nil, apperrors.Validation("history must not be empty")
	}
	if err := s.validator.Validate(historyPayload{History: history}); err != nil {
		return nil, err
	}

	subject := domain.SubjectKey(userID)

	engineHistory := make([]recengine.HistoryItem, 0, len(history))
	for _, item := range history {
		engineHistory = append(engineHistory, recengine.HistoryItem{
			Title:  item.Title,
			Author: item.Author,
			Genre:  item.Genre,
			Rating: item.Rating,
		})
	}

	resp, err := s.engine.Recommend(ctx, recengine.RecommendRequest{
		UserID:            userID,
		PreferredLanguage: s.preferredLanguage,
		History:           engineHistory,
	})
	if err != nil {
		return nil, mapEngineError(err)
	}
	if len(resp.Recommendations) == 0 {
		// The engine answered but produced nothing usable; keep the prior set.
		return nil, apperrors.Unavailable("recommendation engine produced no results", engineHint)
	}

	generatedAt := time.Now().UTC()
	categories := make([]domain.RecommendationCategory, 0, len(resp.Recommendations))
	for _, cat := range resp.Recommendations {
		items := make([]domain.RecommendedItem, 0, len(cat.Items))
		for _, item := range cat.Items {
			items = append(items, domain.RecommendedItem{
				Title:       item.Title,
				Author:      item.Author,
				Description: item.Description,
				Genre:       item.Genre,
				Language:    item.Language,
				MatchScore:  item.MatchScore,
			})
		}
		categories = append(categories, domain.RecommendationCategory{
			Subject:     subject,
			Title:       cat.CategoryTitle,
			Type:        cat.Type,
			Items:       items,
			GeneratedAt: generatedAt,
		})
	}

	if err := s.store.ReplaceCategories(ctx, subject, categories); err != nil {
		return nil, apperrors.Internal("storing recommendations failed").WithCause(err)
	}

	s.logger.Info("generated recommendations",
		"subject", subject,
		"categories", len(categories),
	)

	return &domain.RecommendationSet{
		Subject:    subject,
		Categories: categories,
	}, nil
}

// GetSaved returns the stored recommendation set for a subject, newest
// categories first. NotFound when the subject has none.
func (s *RecommendationService) GetSaved(ctx context.Context, userID string) (*domain.RecommendationSet, error) {
	subject := domain.SubjectKey(userID)

	categories, err := s.store.GetCategories(ctx, subject)
	if err != nil {
		return nil, apperrors.Internal("loading recommendations failed").WithCause(err)
	}
	if len(categories) == 0 {
		return nil, apperrors.NotFoundf("no saved recommendations for subject %s", subject)
	}

	return &domain.RecommendationSet{
		Subject:    subject,
		Categories: categories,
	}, nil
}

// Health proxies the engine's health endpoint. Connectivity failure becomes
// a synthesized unavailable status rather than a raw transport error.
func (s *RecommendationService) Health(ctx context.Context) *recengine.HealthStatus {
	status, err := s.engine.Health(ctx)
	if err != nil {
		s.logger.Warn("engine health check failed", "error", err)
		return &recengine.HealthStatus{
			Status: "unavailable",
			Error:  err.Error(),
			Hint:   engineHint,
		}
	}
	return status
}

// mapEngineError converts engine client sentinels into the application error
// taxonomy. Unavailable results always carry a remediation hint.
func mapEngineError(err error) error {
	switch {
	case apperrors.Is(err, recengine.ErrUnavailable):
		return apperrors.Unavailable("recommendation engine is unreachable", engineHint).WithCause(err)
	case apperrors.Is(err, recengine.ErrBadRequest):
		return apperrors.Validation("recommendation engine rejected the request").WithCause(err)
	case apperrors.Is(err, recengine.ErrMalformed):
		return apperrors.Malformed("recommendation engine returned a malformed payload").WithCause(err)
	case apperrors.Is(err, recengine.ErrServer):
		return apperrors.Unavailable("recommendation engine failed", engineHint).WithCause(err)
	default:
		return apperrors.Internal("recommendation request failed").WithCause(err)
	}
}

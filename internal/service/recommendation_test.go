package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/domain"
	apperrors "github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/errors"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/recengine"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/store/sqlite"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/validation"
)

const engineResponseBody = `{
	"recommendations": [
		{
			"category_title": "Because you read Dune",
			"type": "similar",
			"items": [
				{"title": "Foundation", "author": "Isaac Asimov", "language": "en", "match_score": 0.87}
			]
		}
	]
}`

// setupRecommendation wires the service to a stub engine and a temp store.
func setupRecommendation(t *testing.T, handler http.HandlerFunc) (*RecommendationService, *sqlite.Store, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	store, err := sqlite.Open(t.TempDir()+"/test.db", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	engine := recengine.New(server.URL, testLogger())
	svc := NewRecommendationService(engine, store, validation.New(), "pl", testLogger())
	return svc, store, &calls
}

func duneHistory() []domain.HistoryItem {
	return []domain.HistoryItem{
		{Title: "Dune", Author: "Frank Herbert", Rating: 5},
	}
}

func TestGenerate_EmptyHistory(t *testing.T) {
	svc, _, calls := setupRecommendation(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := svc.Generate(context.Background(), "user-1", nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, int64(0), calls.Load(), "validation must fail before any engine call")
}

func TestGenerate_InvalidHistoryItem(t *testing.T) {
	svc, _, calls := setupRecommendation(t, func(w http.ResponseWriter, r *http.Request) {})

	history := []domain.HistoryItem{{Title: "Dune", Author: "Frank Herbert", Rating: 9}}
	_, err := svc.Generate(context.Background(), "user-1", history)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, int64(0), calls.Load())
}

func TestGenerateThenGetSaved_EndToEnd(t *testing.T) {
	svc, _, _ := setupRecommendation(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(engineResponseBody))
	})
	ctx := context.Background()

	set, err := svc.Generate(ctx, "user-1", duneHistory())
	require.NoError(t, err)
	require.Len(t, set.Categories, 1)
	assert.Equal(t, "user-1", set.Subject)

	saved, err := svc.GetSaved(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, saved.Categories, 1)

	cat := saved.Categories[0]
	assert.Equal(t, "Because you read Dune", cat.Title)
	assert.Equal(t, "similar", cat.Type)
	require.Len(t, cat.Items, 1)
	assert.Equal(t, "Foundation", cat.Items[0].Title)
	assert.Equal(t, "Isaac Asimov", cat.Items[0].Author)
	assert.Equal(t, 0.87, cat.Items[0].MatchScore)
}

func TestGenerate_ReplacesPriorSet(t *testing.T) {
	svc, store, _ := setupRecommendation(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(engineResponseBody))
	})
	ctx := context.Background()

	stale := []domain.RecommendationCategory{{
		Title:       "Old Picks",
		Type:        "stale",
		Items:       []domain.RecommendedItem{{Title: "Old Book", Author: "Old Author", Language: "en"}},
		GeneratedAt: time.Now().UTC().Add(-24 * time.Hour),
	}}
	require.NoError(t, store.ReplaceCategories(ctx, "user-1", stale))

	_, err := svc.Generate(ctx, "user-1", duneHistory())
	require.NoError(t, err)

	saved, err := svc.GetSaved(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, saved.Categories, 1)
	assert.Equal(t, "Because you read Dune", saved.Categories[0].Title, "prior categories must be gone")
}

func TestGenerate_EngineUnreachable_KeepsPriorSet(t *testing.T) {
	store, err := sqlite.Open(t.TempDir()+"/test.db", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	engine := recengine.New(dead.URL, testLogger())
	svc := NewRecommendationService(engine, store, validation.New(), "pl", testLogger())
	ctx := context.Background()

	prior := []domain.RecommendationCategory{{
		Title:       "Kept Picks",
		Type:        "prior",
		Items:       []domain.RecommendedItem{{Title: "Solaris", Author: "Stanisław Lem", Language: "pl"}},
		GeneratedAt: time.Now().UTC(),
	}}
	require.NoError(t, store.ReplaceCategories(ctx, "user-1", prior))

	_, err = svc.Generate(ctx, "user-1", duneHistory())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnavailable))

	var appErr *apperrors.Error
	require.True(t, apperrors.As(err, &appErr))
	assert.NotEmpty(t, appErr.Hint, "unavailable responses carry a remediation hint")

	saved, err := svc.GetSaved(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, saved.Categories, 1)
	assert.Equal(t, "Kept Picks", saved.Categories[0].Title)
}

func TestGenerate_EmptyEngineResult_Unavailable(t *testing.T) {
	svc, store, _ := setupRecommendation(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recommendations": []}`))
	})
	ctx := context.Background()

	prior := []domain.RecommendationCategory{{
		Title:       "Kept Picks",
		Type:        "prior",
		GeneratedAt: time.Now().UTC(),
		Items:       []domain.RecommendedItem{},
	}}
	require.NoError(t, store.ReplaceCategories(ctx, "user-1", prior))

	_, err := svc.Generate(ctx, "user-1", duneHistory())
	assert.True(t, apperrors.Is(err, apperrors.ErrUnavailable))

	// The unusable result must not wipe the stored set.
	saved, err := svc.GetSaved(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, saved.Categories, 1)
}

func TestGenerate_AnonymousSubjectShared(t *testing.T) {
	svc, _, _ := setupRecommendation(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(engineResponseBody))
	})
	ctx := context.Background()

	// Empty user id goes to the shared anonymous bucket, last writer wins.
	set, err := svc.Generate(ctx, "", duneHistory())
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousSubject, set.Subject)

	saved, err := svc.GetSaved(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousSubject, saved.Subject)
}

func TestGetSaved_NotFound(t *testing.T) {
	svc, _, _ := setupRecommendation(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := svc.GetSaved(context.Background(), "nobody")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestHealth_Passthrough(t *testing.T) {
	svc, _, _ := setupRecommendation(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "healthy", "books_indexed": 512}`))
	})

	status := svc.Health(context.Background())
	assert.True(t, status.Healthy())
	assert.Equal(t, 512, status.BooksIndexed)
}

func TestHealth_UnreachableSynthesizesStatus(t *testing.T) {
	store, err := sqlite.Open(t.TempDir()+"/test.db", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	engine := recengine.New(dead.URL, testLogger())
	svc := NewRecommendationService(engine, store, validation.New(), "pl", testLogger())

	status := svc.Health(context.Background())
	assert.False(t, status.Healthy())
	assert.Equal(t, "unavailable", status.Status)
	assert.NotEmpty(t, status.Error)
	assert.NotEmpty(t, status.Hint)
}

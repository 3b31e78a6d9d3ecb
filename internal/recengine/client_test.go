package recengine

import (
	"context"
	"encoding/json/v2"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, slog.New(slog.DiscardHandler))
}

func TestClient_Recommend(t *testing.T) {
	var gotBody RecommendRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/recommend" {
			t.Errorf("%s %s, want POST /recommend", r.Method, r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte(`{
			"recommendations": [
				{
					"category_title": "Because you read Dune",
					"type": "similar_to_last_read",
					"items": [
						{
							"title": "Foundation",
							"author": "Isaac Asimov",
							"language": "pl",
							"match_score": 0.91
						}
					]
				}
			]
		}`))
	})

	resp, err := client.Recommend(context.Background(), RecommendRequest{
		UserID:            "user-1",
		PreferredLanguage: "pl",
		History: []HistoryItem{
			{Title: "Dune", Author: "Frank Herbert", Genre: "Fiction", Rating: 5},
		},
	})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}

	if gotBody.UserID != "user-1" || gotBody.PreferredLanguage != "pl" {
		t.Errorf("request body = %+v", gotBody)
	}
	if len(gotBody.History) != 1 || gotBody.History[0].Rating != 5 {
		t.Errorf("history = %+v", gotBody.History)
	}

	if len(resp.Recommendations) != 1 {
		t.Fatalf("got %d categories, want 1", len(resp.Recommendations))
	}
	cat := resp.Recommendations[0]
	if cat.CategoryTitle != "Because you read Dune" || cat.Type != "similar_to_last_read" {
		t.Errorf("category = %+v", cat)
	}
	if cat.Items[0].MatchScore != 0.91 {
		t.Errorf("match_score = %v, want 0.91", cat.Items[0].MatchScore)
	}
}

func TestClient_Recommend_EmptyRecommendations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	resp, err := client.Recommend(context.Background(), RecommendRequest{PreferredLanguage: "pl"})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if resp.Recommendations == nil {
		t.Error("Recommendations should be an empty slice, not nil")
	}
}

func TestClient_Recommend_Unavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail": "Cannot connect to Qdrant: connection refused. Make sure it's running."}`))
	})

	_, err := client.Recommend(context.Background(), RecommendRequest{PreferredLanguage: "pl"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if !strings.Contains(err.Error(), "Qdrant") {
		t.Errorf("error should preserve engine detail, got %v", err)
	}
}

func TestClient_Recommend_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := New(server.URL, slog.New(slog.DiscardHandler))
	_, err := client.Recommend(context.Background(), RecommendRequest{PreferredLanguage: "pl"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestClient_Health(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q, want /health", r.URL.Path)
		}
		w.Write([]byte(`{"status": "healthy", "books_indexed": 1204}`))
	})

	status, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if !status.Healthy() {
		t.Error("status should be healthy")
	}
	if status.BooksIndexed != 1204 {
		t.Errorf("BooksIndexed = %d, want 1204", status.BooksIndexed)
	}
}

func TestClient_Health_Degraded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "degraded", "error": "connection refused", "hint": "Make sure Qdrant is running"}`))
	})

	status, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if status.Healthy() {
		t.Error("degraded status should not be healthy")
	}
	if status.Hint != "Make sure Qdrant is running" {
		t.Errorf("Hint = %q", status.Hint)
	}
}

// Package service contains the application services that tie the store,
// cache, and external clients together.
package service

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/cache"
	apperrors "github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/errors"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/metadata/googlebooks"
)

// CatalogService fronts the external book-metadata provider with a TTL cache.
// Search results are cached; point lookups go straight to the provider since
// resolution persists their outcome anyway.
type CatalogService struct {
	client *googlebooks.Client
	cache  cache.Cache
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service. ttl bounds how long
// search results stay cached.
func NewCatalogService(client *googlebooks.Client, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		client: client,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// searchCacheKey builds the cache key for a search. The query is normalized
// so that whitespace and case variants share an entry.
func searchCacheKey(query string, maxResults int) string {
	return fmt.Sprintf("gb:search:%s:%d", normalizeQuery(query), maxResults)
}

// normalizeQuery lowercases and collapses whitespace.
func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// Search queries the provider, serving repeats from the cache within the TTL
// window. Concurrent cold-cache searches for the same key are coalesced into
// one outbound call.
func (s *CatalogService) Search(ctx context.Context, query string, maxResults int) ([]googlebooks.ExternalBook, error) {
	if normalizeQuery(query) == "" {
		return nil, apperrors.Validation("search query must not be empty")
	}

	key := searchCacheKey(query, maxResults)

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("search cache read failed", "key", key, "error", err)
	} else if ok {
		var books []googlebooks.ExternalBook
		if err := json.Unmarshal(data, &books); err != nil {
			s.logger.Warn("search cache entry corrupt", "key", key, "error", err)
		} else {
			s.logger.Debug("search cache hit", "key", key, "results", len(books))
			return books, nil
		}
	}

	// The coalesced fetch runs on a context detached from whichever caller
	// happened to start it; a waiter with a live context must not inherit
	// the starter's cancellation. Each caller still honors its own context
	// in the select below.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		books, err := s.client.Search(fetchCtx, query, maxResults)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(books); err != nil {
			s.logger.Warn("encode search results for cache", "key", key, "error", err)
		} else if err := s.cache.Set(fetchCtx, key, data, s.ttl); err != nil {
			// Cache write failures degrade to uncached behavior.
			s.logger.Warn("search cache write failed", "key", key, "error", err)
		}

		return books, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, mapCatalogError(res.Err)
		}
		return res.Val.([]googlebooks.ExternalBook), nil
	}
}

// LookupByISBN fetches the provider record for an ISBN, uncached.
func (s *CatalogService) LookupByISBN(ctx context.Context, isbn string) (*googlebooks.ExternalBook, error) {
	book, err := s.client.LookupByISBN(ctx, isbn)
	if err != nil {
		return nil, mapCatalogError(err)
	}
	return book, nil
}

// LookupByExternalID fetches the provider record for a volume id, uncached.
func (s *CatalogService) LookupByExternalID(ctx context.Context, externalID string) (*googlebooks.ExternalBook, error) {
	book, err := s.client.LookupByID(ctx, externalID)
	if err != nil {
		return nil, mapCatalogError(err)
	}
	return book, nil
}

// mapCatalogError converts provider client sentinels into the application
// error taxonomy. Provider failures always surface; nothing degrades to an
// empty result.
func mapCatalogError(err error) error {
	switch {
	case apperrors.Is(err, googlebooks.ErrNotFound):
		return apperrors.NotFound("book not found in external catalog").WithCause(err)
	case apperrors.Is(err, googlebooks.ErrBadRequest):
		return apperrors.Validation("external catalog rejected the request").WithCause(err)
	case apperrors.Is(err, googlebooks.ErrMalformed):
		return apperrors.Malformed("external catalog returned a malformed payload").WithCause(err)
	case apperrors.Is(err, googlebooks.ErrRateLimited):
		return apperrors.Unavailable("external catalog rate limit exceeded", "retry later").WithCause(err)
	case apperrors.Is(err, googlebooks.ErrUnavailable), apperrors.Is(err, googlebooks.ErrServer):
		return apperrors.Unavailable("external catalog is unreachable", "check network connectivity to the metadata provider").WithCause(err)
	default:
		return apperrors.Internal("external catalog request failed").WithCause(err)
	}
}

package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/cache"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/domain"
	apperrors "github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/errors"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/id"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/metadata/googlebooks"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/store/sqlite"
)

// setupResolver wires a resolver against a temp store and a stubbed provider.
func setupResolver(t *testing.T, handler http.HandlerFunc) (*ResolverService, *sqlite.Store, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := googlebooks.New(server.URL, "", testLogger())
	t.Cleanup(client.Close)
	catalog := NewCatalogService(client, cache.NewMemory(), time.Hour, testLogger())

	store, err := sqlite.Open(t.TempDir()+"/test.db", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewResolverService(store, catalog, testLogger()), store, &calls
}

func seedBook(t *testing.T, store *sqlite.Store, title, isbn, externalID string) *domain.Book {
	t.Helper()
	b := &domain.Book{
		Syncable:   domain.Syncable{ID: id.MustGenerate("book")},
		Title:      title,
		ISBN:       isbn,
		ExternalID: externalID,
	}
	b.InitTimestamps()
	require.NoError(t, store.CreateBook(context.Background(), b))
	return b
}

func duneVolumeBody() []byte {
	return []byte(`{
		"totalItems": 1,
		"items": [
			{
				"id": "vol-dune",
				"volumeInfo": {
					"title": "Dune",
					"authors": ["Frank Herbert"],
					"categories": ["Fiction / Science Fiction"],
					"industryIdentifiers": [{"type": "ISBN_13", "identifier": "9780441172719"}]
				}
			}
		]
	}`)
}

func TestResolve_InvalidReference(t *testing.T) {
	svc, _, calls := setupResolver(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := svc.Resolve(context.Background(), domain.BookReference{})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = svc.Resolve(context.Background(), domain.BookReference{LocalID: "x", ISBN: "y"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	assert.Equal(t, int64(0), calls.Load())
}

func TestResolve_LocalID(t *testing.T) {
	svc, store, calls := setupResolver(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx := context.Background()

	seeded := seedBook(t, store, "Dune", "9780441172719", "")

	got, err := svc.Resolve(ctx, domain.BookReference{LocalID: seeded.ID})
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)
	assert.Equal(t, int64(0), calls.Load())

	_, err = svc.Resolve(ctx, domain.BookReference{LocalID: "book_missing"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestResolve_ISBN_LocalHitSkipsProvider(t *testing.T) {
	svc, store, calls := setupResolver(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx := context.Background()

	seeded := seedBook(t, store, "Dune", "9780441172719", "")

	got, err := svc.Resolve(ctx, domain.BookReference{ISBN: "9780441172719"})
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)
	assert.Equal(t, int64(0), calls.Load(), "local hit must not call the provider")
}

func TestResolve_ISBN_MaterializesFromProvider(t *testing.T) {
	svc, store, _ := setupResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(duneVolumeBody())
	})
	ctx := context.Background()

	got, err := svc.Resolve(ctx, domain.BookReference{ISBN: "978-0-441-17271-9"})
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "9780441172719", got.ISBN)
	assert.Equal(t, "vol-dune", got.ExternalID)
	require.Len(t, got.AuthorIDs, 1)
	require.Len(t, got.GenreIDs, 1)

	author, err := store.GetAuthor(ctx, got.AuthorIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "Frank", author.FirstName)
	assert.Equal(t, "Herbert", author.LastName)

	// Resolving again reuses the materialized row.
	again, err := svc.Resolve(ctx, domain.BookReference{ISBN: "9780441172719"})
	require.NoError(t, err)
	assert.Equal(t, got.ID, again.ID)

	count, err := store.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestResolve_ISBN_NotFoundAnywhere(t *testing.T) {
	svc, _, _ := setupResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalItems": 0}`))
	})

	_, err := svc.Resolve(context.Background(), domain.BookReference{ISBN: "9780000000000"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestResolve_ExternalID_DedupsByISBN(t *testing.T) {
	svc, store, _ := setupResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": "vol-dune",
			"volumeInfo": {
				"title": "Dune",
				"industryIdentifiers": [{"type": "ISBN_13", "identifier": "9780441172719"}]
			}
		}`))
	})
	ctx := context.Background()

	// A row with the same ISBN already exists under no external id.
	seeded := seedBook(t, store, "Dune", "9780441172719", "")

	got, err := svc.Resolve(ctx, domain.BookReference{ExternalID: "vol-dune"})
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID, "dedup by isbn even when arriving via external id")

	count, err := store.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestResolve_ExternalID_KnownLocallySkipsProvider(t *testing.T) {
	svc, store, calls := setupResolver(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx := context.Background()

	seeded := seedBook(t, store, "Dune", "9780441172719", "vol-dune")

	got, err := svc.Resolve(ctx, domain.BookReference{ExternalID: "vol-dune"})
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)
	assert.Equal(t, int64(0), calls.Load())
}

func TestResolve_MaterializeDefaults(t *testing.T) {
	svc, _, _ := setupResolver(t, func(w http.ResponseWriter, r *http.Request) {
		// Provider record with no title and no identifiers.
		w.Write([]byte(`{"id": "vol-bare", "volumeInfo": {}}`))
	})

	got, err := svc.Resolve(context.Background(), domain.BookReference{ExternalID: "vol-bare"})
	require.NoError(t, err)
	assert.Equal(t, "Unknown", got.Title)
	assert.NotEmpty(t, got.ISBN, "missing isbn gets a synthesized placeholder")
	assert.LessOrEqual(t, len(got.ISBN), domain.MaxISBNLength)
}

func TestResolve_SingleTokenAuthorQuirk(t *testing.T) {
	svc, store, _ := setupResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": "vol-prince",
			"volumeInfo": {"title": "The Beautiful Ones", "authors": ["Prince"]}
		}`))
	})
	ctx := context.Background()

	got, err := svc.Resolve(ctx, domain.BookReference{ExternalID: "vol-prince"})
	require.NoError(t, err)
	require.Len(t, got.AuthorIDs, 1)

	author, err := store.GetAuthor(ctx, got.AuthorIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "Prince", author.FirstName)
	assert.Equal(t, "Prince", author.LastName)
}

func TestResolve_ConcurrentSameISBN_OneRow(t *testing.T) {
	svc, store, _ := setupResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(duneVolumeBody())
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Resolve(ctx, domain.BookReference{ISBN: "9780441172719"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := store.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "concurrent resolution must not duplicate rows")
}

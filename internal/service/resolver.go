package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/domain"
	apperrors "github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/errors"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/id"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/metadata/googlebooks"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/store/sqlite"
)

// materializedTitleFallback is used when the provider record has no title.
const materializedTitleFallback = "Unknown"

// ResolverService resolves a BookReference to a canonical local book,
// materializing provider records into the store on first sight.
type ResolverService struct {
	store   *sqlite.Store
	catalog *CatalogService
	logger  *slog.Logger

	// Materialization for one reference key runs serialized. Together with
	// the store's unique constraints this keeps concurrent resolution of the
	// same unseen reference from creating duplicate rows.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewResolverService creates a new resolver service.
func NewResolverService(store *sqlite.Store, catalog *CatalogService, logger *slog.Logger) *ResolverService {
	return &ResolverService{
		store:   store,
		catalog: catalog,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Resolve resolves a reference to its canonical book, creating one from the
// external catalog when no local record exists.
func (s *ResolverService) Resolve(ctx context.Context, ref domain.BookReference) (*domain.Book, error) {
	if err := ref.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	switch {
	case ref.LocalID != "":
		return s.resolveLocal(ctx, ref.LocalID)
	case ref.ISBN != "":
		return s.resolveISBN(ctx, googlebooks.NormalizeISBN(ref.ISBN))
	default:
		return s.resolveExternal(ctx, ref.ExternalID)
	}
}

func (s *ResolverService) resolveLocal(ctx context.Context, localID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, localID)
	if errors.Is(err, sqlite.ErrNotFound) {
		return nil, apperrors.NotFoundf("no book with id %s", localID)
	}
	if err != nil {
		return nil, apperrors.Internal("book lookup failed").WithCause(err)
	}
	return book, nil
}

func (s *ResolverService) resolveISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	// A local match wins without touching the external catalog.
	book, err := s.store.GetBookByISBN(ctx, isbn)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, sqlite.ErrNotFound) {
		return nil, apperrors.Internal("book lookup failed").WithCause(err)
	}

	unlock := s.lockKey("isbn:" + isbn)
	defer unlock()

	// Re-check under the lock; a concurrent resolve may have materialized it.
	book, err = s.store.GetBookByISBN(ctx, isbn)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, sqlite.ErrNotFound) {
		return nil, apperrors.Internal("book lookup failed").WithCause(err)
	}

	external, err := s.catalog.LookupByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}

	return s.materialize(ctx, external)
}

func (s *ResolverService) resolveExternal(ctx context.Context, externalID string) (*domain.Book, error) {
	// A previously materialized record short-circuits the provider call.
	book, err := s.store.GetBookByExternalID(ctx, externalID)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, sqlite.ErrNotFound) {
		return nil, apperrors.Internal("book lookup failed").WithCause(err)
	}

	unlock := s.lockKey("ext:" + externalID)
	defer unlock()

	book, err = s.store.GetBookByExternalID(ctx, externalID)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, sqlite.ErrNotFound) {
		return nil, apperrors.Internal("book lookup failed").WithCause(err)
	}

	external, err := s.catalog.LookupByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	// Dedup by ISBN even when arriving via external id.
	if external.ISBN != "" {
		book, err := s.store.GetBookByISBN(ctx, external.ISBN)
		if err == nil {
			return book, nil
		}
		if !errors.Is(err, sqlite.ErrNotFound) {
			return nil, apperrors.Internal("book lookup failed").WithCause(err)
		}
	}

	return s.materialize(ctx, external)
}

// materialize creates the local Book, Author, and Genre rows for a provider
// record. Author and genre creation rides on the store's unique constraints,
// so concurrent materializations reuse rather than duplicate rows.
func (s *ResolverService) materialize(ctx context.Context, external *googlebooks.ExternalBook) (*domain.Book, error) {
	authorIDs := make([]string, 0, len(external.Authors))
	for _, name := range external.Authors {
		firstName, lastName := domain.SplitAuthorName(name)
		if firstName == "" && lastName == "" {
			continue
		}
		author, err := s.store.GetOrCreateAuthor(ctx, firstName, lastName)
		if err != nil {
			return nil, apperrors.Internal("author creation failed").WithCause(err)
		}
		authorIDs = append(authorIDs, author.ID)
	}

	genreIDs := make([]string, 0, len(external.Categories))
	for _, name := range external.Categories {
		normalized := domain.NormalizeGenreName(name)
		if normalized == "" {
			continue
		}
		genre, err := s.store.GetOrCreateGenre(ctx, normalized)
		if err != nil {
			return nil, apperrors.Internal("genre creation failed").WithCause(err)
		}
		genreIDs = append(genreIDs, genre.ID)
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, apperrors.Internal("generate book ID").WithCause(err)
	}

	title := external.Title
	if title == "" {
		title = materializedTitleFallback
	}

	isbn := external.ISBN
	if isbn == "" {
		isbn = placeholderISBN()
	}

	book := &domain.Book{
		Syncable:      domain.Syncable{ID: bookID},
		Title:         title,
		ISBN:          isbn,
		ExternalID:    external.ExternalID,
		CoverURL:      external.ThumbnailURL,
		Description:   external.Description,
		Publisher:     external.Publisher,
		PublishedDate: external.PublishedDate,
		PageCount:     external.PageCount,
		AuthorIDs:     authorIDs,
		GenreIDs:      genreIDs,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, apperrors.Internal("book creation failed").WithCause(err)
	}

	s.logger.Info("materialized book",
		"book_id", book.ID,
		"title", book.Title,
		"isbn", book.ISBN,
		"external_id", book.ExternalID,
		"authors", len(authorIDs),
		"genres", len(genreIDs),
	)

	return book, nil
}

// placeholderISBN synthesizes a unique stand-in for provider records without
// an ISBN, bounded to the column width.
func placeholderISBN() string {
	raw := "tmp-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return domain.Truncate(raw, domain.MaxISBNLength)
}

// lockKey acquires the per-reference mutex and returns its release func.
func (s *ResolverService) lockKey(key string) func() {
	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

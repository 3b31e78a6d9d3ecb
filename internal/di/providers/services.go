package providers

import (
	"github.com/samber/do/v2"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/config"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/logger"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/recengine"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/service"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideCatalogService provides the cached catalog search service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	clientHandle := do.MustInvoke[*GoogleBooksClientHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)

	svc := service.NewCatalogService(
		clientHandle.Client,
		cacheHandle.Badger,
		cfg.Catalog.SearchCacheTTL,
		log.Logger,
	)

	log.Info("Catalog service initialized",
		"search_cache_ttl", cfg.Catalog.SearchCacheTTL,
	)

	return svc, nil
}

// ProvideResolverService provides the book identity resolver.
func ProvideResolverService(i do.Injector) (*service.ResolverService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalog := do.MustInvoke[*service.CatalogService](i)

	return service.NewResolverService(storeHandle.Store, catalog, log.Logger), nil
}

// ProvideRecommendationService provides the recommendation service.
func ProvideRecommendationService(i do.Injector) (*service.RecommendationService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	engine := do.MustInvoke[*recengine.Client](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)

	svc := service.NewRecommendationService(
		engine,
		storeHandle.Store,
		validator,
		cfg.Recommender.PreferredLanguage,
		log.Logger,
	)

	log.Info("Recommendation service initialized",
		"preferred_language", cfg.Recommender.PreferredLanguage,
	)

	return svc, nil
}

// Package di provides dependency injection configuration for the Bookshelf server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/config"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/di/providers"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/logger"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/recengine"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/service"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCache)

	// External clients
	do.Provide(injector, providers.ProvideGoogleBooksClient)
	do.Provide(injector, providers.ProvideRecEngineClient)

	// Business services
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideResolverService)
	do.Provide(injector, providers.ProvideRecommendationService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.CacheHandle](injector)
	_ = do.MustInvoke[*providers.GoogleBooksClientHandle](injector)
	_ = do.MustInvoke[*recengine.Client](injector)

	// Business services
	_ = do.MustInvoke[*service.CatalogService](injector)
	_ = do.MustInvoke[*service.ResolverService](injector)
	_ = do.MustInvoke[*service.RecommendationService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}

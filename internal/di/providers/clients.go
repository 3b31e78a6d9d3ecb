package providers

import (
	"github.com/samber/do/v2"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/config"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/logger"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/metadata/googlebooks"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/recengine"
)

// GoogleBooksClientHandle wraps the Google Books client with shutdown capability.
type GoogleBooksClientHandle struct {
	*googlebooks.Client
}

// Shutdown implements do.Shutdownable.
func (h *GoogleBooksClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideGoogleBooksClient provides the Google Books API client.
func ProvideGoogleBooksClient(i do.Injector) (*GoogleBooksClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := googlebooks.New(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, log.Logger)
	log.Info("Google Books client initialized",
		"base_url", cfg.Catalog.BaseURL,
		"authenticated", cfg.Catalog.APIKey != "",
	)

	return &GoogleBooksClientHandle{Client: client}, nil
}

// ProvideRecEngineClient provides the recommendation engine client.
func ProvideRecEngineClient(i do.Injector) (*recengine.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := recengine.New(cfg.Recommender.BaseURL, log.Logger)
	log.Info("Recommendation engine client initialized",
		"base_url", cfg.Recommender.BaseURL,
	)

	return client, nil
}

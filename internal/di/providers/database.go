package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/cache"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/config"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/logger"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Data.BasePath, "bookshelf.db")
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// CacheHandle wraps the cache with shutdown capability.
type CacheHandle struct {
	*cache.Badger
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the Badger-backed response cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	cachePath := filepath.Join(cfg.Data.BasePath, "cache")
	c, err := cache.OpenBadger(cachePath, log.Logger)
	if err != nil {
		return nil, err
	}

	return &CacheHandle{Badger: c}, nil
}

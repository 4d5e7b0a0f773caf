package bootstrap

import (
	"time"

	"github.com/GregMSThompson/wallet-api/internal/cache"
	"github.com/GregMSThompson/wallet-api/internal/config"
)

// InitCache uses memory only, or memory in front of SQLite when a database
// path is configured. The returned closer releases the SQLite handle.
func InitCache(cfg *config.Config) (*cache.Cache, func() error, error) {
	mem := cache.NewMemory(cfg.CacheMaxEntries)
	if cfg.CacheDBPath == "" {
		return cache.New(mem, cfg.CacheTTL, time.Now), func() error { return nil }, nil
	}

	durable, err := cache.NewSQLite(cfg.CacheDBPath)
	if err != nil {
		return nil, nil, err
	}
	return cache.New(cache.NewLayered(mem, durable), cfg.CacheTTL, time.Now), durable.Close, nil
}

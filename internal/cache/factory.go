package cache

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// ProviderConfig describes one metadata lookup table. The defaults (Size 0,
// TTL 0) keep every resolved identifier for the lifetime of the process.
type ProviderConfig struct {
	Size    int           // entries kept by the memory provider, 0 = unbounded
	TTL     time.Duration // 0 = lookups never expire
	OnEvict EvictCallback // memory provider only
	Logger  Logger        // backend failures; nil drops them

	// Redis/Valkey connection, used by the "redis" provider only
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Group is the lookup table name (tmdb_id, imdb_id, media_type, image_url,
	// imdb_url). It prefixes Redis keys and labels the cache metrics.
	Group string
}

// Provider builds a Cache backend from cfg.
type Provider func(cfg ProviderConfig) (Cache, error)

type registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

var backends = &registry{providers: make(map[string]Provider)}

// Register makes a backend selectable through the cache.provider setting.
// It panics on a nil provider or a name registered twice.
func Register(name string, p Provider) {
	backends.mu.Lock()
	defer backends.mu.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, exists := backends.providers[name]; exists {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	backends.providers[name] = p
}

func (r *registry) lookup(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// New opens a lookup table on the named backend. Tables with a Group are metered.
func New(name string, cfg ProviderConfig) (Cache, error) {
	p, ok := backends.lookup(name)
	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}
	if cfg.Group == "" {
		return p(cfg)
	}

	inner, err := p(countEvictions(cfg))
	if err != nil {
		return nil, fmt.Errorf("cache: create %s cache for %q: %w", name, cfg.Group, err)
	}
	return newMeteredCache(inner, cfg.Group), nil
}

// countEvictions chains the eviction counter in front of the caller's callback.
func countEvictions(cfg ProviderConfig) ProviderConfig {
	group, next := cfg.Group, cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if next != nil {
			next(key, value)
		}
	}
	return cfg
}

// RegisteredProviders lists the selectable backends in name order.
func RegisteredProviders() []string {
	backends.mu.RLock()
	defer backends.mu.RUnlock()

	names := make([]string, 0, len(backends.providers))
	for name := range backends.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

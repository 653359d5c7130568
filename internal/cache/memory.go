package cache

import (
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", func(cfg ProviderConfig) (Cache, error) {
		return newMemoryCache(cfg), nil
	})
}

// memoryCache keeps entries in process. With the default Size 0 and TTL 0 it
// never forgets a lookup, so each item is resolved once per run.
type memoryCache struct {
	entries *lru.LRU[string, []byte]
}

func newMemoryCache(cfg ProviderConfig) *memoryCache {
	var onEvict lru.EvictCallback[string, []byte]
	if cfg.OnEvict != nil {
		onEvict = lru.EvictCallback[string, []byte](cfg.OnEvict)
	}
	return &memoryCache{entries: lru.NewLRU(cfg.Size, onEvict, cfg.TTL)}
}

func (m *memoryCache) Get(key string) ([]byte, bool) { return m.entries.Get(key) }

func (m *memoryCache) Set(key string, value []byte) { m.entries.Add(key, value) }

func (m *memoryCache) Contains(key string) bool { return m.entries.Contains(key) }

func (m *memoryCache) Len() int { return m.entries.Len() }

func (m *memoryCache) Close() error { return nil }

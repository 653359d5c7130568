package cache

// EvictCallback is called when an entry is evicted from the cache.
// Only the memory provider reports evictions; Redis relies on server-side policies.
type EvictCallback func(key string, value []byte)

// Logger receives error reports from cache backends.
type Logger interface {
	Error(msg string, err error)
}

// Cache is a key-value store backing the metadata resolvers.
type Cache interface {
	// Get retrieves a value by key. Returns the value and true if found, or nil and false if not.
	Get(key string) ([]byte, bool)

	// Set stores a value with the given key, overwriting any previous value.
	Set(key string, value []byte)

	// Contains checks whether a key exists without touching recency.
	Contains(key string) bool

	// Len returns the number of entries currently held for this cache.
	Len() int

	// Close releases any resources held by the cache (e.g., network connections).
	Close() error
}

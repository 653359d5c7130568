package cache

// meteredCache counts hits and misses of one metadata group and exposes its
// size to the entries gauge.
type meteredCache struct {
	Cache
	group string
}

func newMeteredCache(inner Cache, group string) *meteredCache {
	registerEntriesCollector(group, inner.Len)
	return &meteredCache{Cache: inner, group: group}
}

func (c *meteredCache) Get(key string) ([]byte, bool) {
	val, ok := c.Cache.Get(key)
	outcome := MissesTotal
	if ok {
		outcome = HitsTotal
	}
	outcome.WithLabelValues(c.group).Inc()
	return val, ok
}

// Close drops the entries gauge before closing the backend.
func (c *meteredCache) Close() error {
	unregisterEntriesCollector(c.group)
	return c.Cache.Close()
}

// groupOf returns the metric group of c, or "" when c is not metered.
func groupOf(c Cache) string {
	if m, ok := c.(*meteredCache); ok {
		return m.group
	}
	return ""
}

package cache

// ResolveFunc performs the remote lookup for a cold key.
type ResolveFunc func() (string, error)

// Lookup outcomes recorded in ResolveTotal
const (
	outcomeFound = "found"
	outcomeEmpty = "empty"
	outcomeError = "error"
)

// Resolver memoises string lookups on top of a Cache: a cold key triggers
// exactly one call to the ResolveFunc and successful results are stored,
// including empty ones. Errors are returned and never stored, so the next
// call retries the lookup.
type Resolver struct {
	cache Cache
	group string
}

// NewResolver creates a get-or-resolve memo backed by c. Outcomes are counted
// under the group c was created with, if any.
func NewResolver(c Cache) *Resolver {
	return &Resolver{cache: c, group: groupOf(c)}
}

// GetOrResolve returns the cached value for key or resolves and stores it.
func (r *Resolver) GetOrResolve(key string, resolve ResolveFunc) (string, error) {
	if val, ok := r.cache.Get(key); ok {
		return string(val), nil
	}

	val, err := resolve()
	switch {
	case err != nil:
		r.count(outcomeError)
		return "", err
	case val == "":
		r.count(outcomeEmpty)
	default:
		r.count(outcomeFound)
	}
	r.cache.Set(key, []byte(val))
	return val, nil
}

func (r *Resolver) count(outcome string) {
	if r.group != "" {
		ResolveTotal.WithLabelValues(r.group, outcome).Inc()
	}
}

// Len returns the number of memoised keys.
func (r *Resolver) Len() int {
	return r.cache.Len()
}

// Close closes the backing cache.
func (r *Resolver) Close() error {
	return r.cache.Close()
}

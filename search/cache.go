package search

// Cache is a key/value store scoped to one problem instance.
//
// A nil *Cache holds nothing: Load misses and Store is a no-op, so
// CacheValue rebuilds on every call. It is not safe for concurrent use. A search owns its problem and therefore
// its cache; parallel searches each need their own problem instance.
type Cache struct {
	entries map[any]any
}

func NewCache() *Cache {
	return &Cache{entries: make(map[any]any)}
}

// Load returns the value stored under key.
func (c *Cache) Load(key any) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.entries[key]
	return v, ok
}

// Store sets the value under key, replacing any previous value.
func (c *Cache) Store(key, value any) {
	if c == nil {
		return
	}
	if c.entries == nil {
		c.entries = make(map[any]any)
	}
	c.entries[key] = value
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Reset drops every entry.
func (c *Cache) Reset() {
	if c == nil {
		return
	}
	clear(c.entries)
}

// CacheValue returns the typed value stored under key, creating it with
// build on first use.
func CacheValue[T any](c *Cache, key any, build func() T) T {
	if v, ok := c.Load(key); ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	t := build()
	c.Store(key, t)
	return t
}

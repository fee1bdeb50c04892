package catalog

import (
	"context"
	"time"

	cache "github.com/go-pkgz/expirable-cache"
	"golang.org/x/sync/singleflight"
)

// Cache holds the most recently reflected Catalog per schema. A stale entry
// keeps serving until its TTL expires or Invalidate is called; any reflection
// failure leaves the stale entry in place rather than evicting it.
type Cache struct {
	db    Queryer
	store cache.Cache
	group singleflight.Group
}

// NewCache builds a schema-reflection cache with the given TTL. db is reused
// for every reflection triggered by Get.
func NewCache(db Queryer, ttl time.Duration) (*Cache, error) {
	store, err := cache.NewCache(cache.TTL(ttl))
	if err != nil {
		return nil, err
	}
	return &Cache{db: db, store: store}, nil
}

// Get returns the cached Catalog for schema, reflecting it on a miss.
// Concurrent misses for the same schema collapse into a single reflection
// via singleflight; every caller waiting on it receives the same result.
func (c *Cache) Get(ctx context.Context, schema string) (*Catalog, error) {
	if v, ok := c.store.Get(schema); ok {
		return v.(*Catalog), nil
	}

	v, err, _ := c.group.Do(schema, func() (interface{}, error) {
		cat, err := Reflect(ctx, c.db, schema)
		if err != nil {
			return nil, err
		}
		c.store.Set(schema, cat, 0)
		return cat, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Catalog), nil
}

// Invalidate drops the cached entry for schema immediately, forcing the next
// Get to reflect.
func (c *Cache) Invalidate(schema string) {
	c.store.Remove(schema)
}

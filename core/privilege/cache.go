package privilege

import (
	"context"
	"time"

	cache "github.com/go-pkgz/expirable-cache"
	"golang.org/x/sync/singleflight"
)

// Cache holds the most recently computed RolePrivileges per (schema, role).
type Cache struct {
	db    Queryer
	store cache.Cache
	group singleflight.Group
}

func NewCache(db Queryer, ttl time.Duration) (*Cache, error) {
	store, err := cache.NewCache(cache.TTL(ttl))
	if err != nil {
		return nil, err
	}
	return &Cache{db: db, store: store}, nil
}

func key(schema, role string) string { return schema + "\x00" + role }

// Get returns the cached RolePrivileges for (schema, role), computing it on
// a miss. Concurrent misses for the same key collapse into one reflection.
func (c *Cache) Get(ctx context.Context, schema, role string) (*RolePrivileges, error) {
	k := key(schema, role)
	if v, ok := c.store.Get(k); ok {
		return v.(*RolePrivileges), nil
	}

	v, err, _ := c.group.Do(k, func() (interface{}, error) {
		rp, err := Reflect(ctx, c.db, schema, role)
		if err != nil {
			return nil, err
		}
		c.store.Set(k, rp, 0)
		return rp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*RolePrivileges), nil
}

// Invalidate drops the cached entry for (schema, role).
func (c *Cache) Invalidate(schema, role string) {
	c.store.Remove(key(schema, role))
}

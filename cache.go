package scache

import (
	"sync/atomic"

	"SCache/store"
)

// Cache is a named cache backed by one store for its whole lifetime. Every
// operation is forwarded to the store; the cache keeps no entries of its own.
type Cache[K comparable, T any] struct {
	name    string
	store   store.Store[K, *T]
	manager *Manager
	closed  atomic.Bool
}

func newCache[K comparable, T any](name string, s store.Store[K, *T], manager *Manager) *Cache[K, T] {
	return &Cache[K, T]{
		name:    name,
		store:   s,
		manager: manager,
	}
}

func (c *Cache[K, T]) Name() string {
	return c.name
}

func (c *Cache[K, T]) Manager() *Manager {
	return c.manager
}

// Get returns the value for key. A reclaimed weak value is a miss.
func (c *Cache[K, T]) Get(key K) (*T, bool) {
	if c.closed.Load() {
		return nil, false
	}

	holder, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	return holder.Value()
}

// GetAll returns the values present for keys. Misses are left out.
func (c *Cache[K, T]) GetAll(keys ...K) map[K]*T {
	values := make(map[K]*T, len(keys))
	for _, key := range keys {
		if v, ok := c.Get(key); ok {
			values[key] = v
		}
	}
	return values
}

func (c *Cache[K, T]) ContainsKey(key K) bool {
	_, ok := c.Get(key)
	return ok
}

func (c *Cache[K, T]) Put(key K, val *T) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if val == nil {
		return ErrValueRequired
	}

	c.store.Put(key, val)
	return nil
}

func (c *Cache[K, T]) PutAll(values map[K]*T) error {
	for key, val := range values {
		if err := c.Put(key, val); err != nil {
			return err
		}
	}
	return nil
}

// GetAndPut stores val and returns the value it replaced, if any.
func (c *Cache[K, T]) GetAndPut(key K, val *T) (*T, bool, error) {
	if c.closed.Load() {
		return nil, false, ErrCacheClosed
	}
	if val == nil {
		return nil, false, ErrValueRequired
	}

	var (
		old *T
		ok  bool
	)
	if holder, found := c.store.Get(key); found {
		old, ok = holder.Value()
	}
	c.store.Put(key, val)
	return old, ok, nil
}

// Remove deletes key and reports whether a live value was removed.
func (c *Cache[K, T]) Remove(key K) bool {
	_, ok := c.GetAndRemove(key)
	return ok
}

func (c *Cache[K, T]) GetAndRemove(key K) (*T, bool) {
	if c.closed.Load() {
		return nil, false
	}

	holder, ok := c.store.Remove(key)
	if !ok {
		return nil, false
	}
	return holder.Value()
}

func (c *Cache[K, T]) RemoveAll(keys ...K) {
	for _, key := range keys {
		c.Remove(key)
	}
}

func (c *Cache[K, T]) Clear() {
	if c.closed.Load() {
		return
	}

	c.store.Clear()
}

// Close releases the cache from its manager and clears the store. Close is
// safe to call more than once.
func (c *Cache[K, T]) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}

	if c.manager != nil {
		c.manager.releaseCache(c.name)
	}
	c.store.Clear()
}

func (c *Cache[K, T]) IsClosed() bool {
	return c.closed.Load()
}

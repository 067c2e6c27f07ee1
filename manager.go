package scache

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"SCache/store"
)

var (
	ErrNameRequired      = errors.New("cache name is required")
	ErrKeyRequired       = errors.New("key is required")
	ErrValueRequired     = errors.New("value is required")
	ErrCacheExists       = errors.New("cache already exists")
	ErrCacheNotFound     = errors.New("cache not found")
	ErrCacheClosed       = errors.New("cache is closed")
	ErrManagerClosed     = errors.New("cache manager is closed")
	ErrIncompatibleTypes = errors.New("incompatible cache key or value type")
)

// namedCache is the type-erased view a Manager keeps of its caches.
type namedCache interface {
	Name() string
	Close()
}

// Manager owns a set of named caches that share one store configuration.
type Manager struct {
	mutex    sync.RWMutex
	uri      string
	scope    string
	opts     store.Options
	provider *Provider
	caches   map[string]namedCache
	closed   atomic.Bool
}

// NewManager creates a manager outside of any provider.
func NewManager(uri string, opts store.Options) (*Manager, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return newManager(nil, uri, DefaultScope, opts), nil
}

func newManager(provider *Provider, uri, scope string, opts store.Options) *Manager {
	return &Manager{
		uri:      uri,
		scope:    scope,
		opts:     opts,
		provider: provider,
		caches:   make(map[string]namedCache),
	}
}

func (m *Manager) URI() string {
	return m.uri
}

func (m *Manager) Scope() string {
	return m.scope
}

func (m *Manager) Options() store.Options {
	return m.opts
}

func (m *Manager) Provider() *Provider {
	return m.provider
}

// CreateCache builds a new cache named name using the manager's store
// options.
func CreateCache[K comparable, T any](m *Manager, name string) (*Cache[K, T], error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed.Load() {
		return nil, ErrManagerClosed
	}
	if _, exists := m.caches[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrCacheExists, name)
	}

	s, err := store.New[K, T](m.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create store for %s: %w", name, err)
	}

	c := newCache(name, s, m)
	m.caches[name] = c
	logrus.Debugf("cache %s created with %s store", name, m.opts.Type)
	return c, nil
}

// GetCache looks up name. The cache must have been created with the same key
// and value types.
func GetCache[K comparable, T any](m *Manager, name string) (*Cache[K, T], error) {
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}

	m.mutex.RLock()
	nc, ok := m.caches[name]
	m.mutex.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheNotFound, name)
	}

	c, ok := nc.(*Cache[K, T])
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", ErrIncompatibleTypes, name, nc)
	}
	return c, nil
}

func (m *Manager) CacheNames() ([]string, error) {
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	names := make([]string, 0, len(m.caches))
	for name := range m.caches {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// DestroyCache closes the named cache, which clears it and drops it from the
// manager. Destroying a missing cache is not an error.
func (m *Manager) DestroyCache(name string) error {
	if m.closed.Load() {
		return ErrManagerClosed
	}
	if name == "" {
		return ErrNameRequired
	}

	m.mutex.RLock()
	c, ok := m.caches[name]
	m.mutex.RUnlock()

	if ok {
		c.Close()
		logrus.Debugf("cache %s destroyed", name)
	}
	return nil
}

// Close releases the manager from its provider and closes every cache.
func (m *Manager) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}

	if m.provider != nil {
		m.provider.releaseManager(m.uri, m.scope)
	}

	m.mutex.Lock()
	caches := make([]namedCache, 0, len(m.caches))
	for _, c := range m.caches {
		caches = append(caches, c)
	}
	clear(m.caches)
	m.mutex.Unlock()

	for _, c := range caches {
		m.closeCache(c)
	}
}

func (m *Manager) IsClosed() bool {
	return m.closed.Load()
}

func (m *Manager) closeCache(c namedCache) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Warnf("cannot close cache %s: %v", c.Name(), r)
		}
	}()
	c.Close()
}

func (m *Manager) releaseCache(name string) {
	m.mutex.Lock()
	delete(m.caches, name)
	m.mutex.Unlock()
}

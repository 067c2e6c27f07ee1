// Package store holds the storage strategies behind a named cache: an
// unbounded map of strong references, a map of weak references the garbage
// collector may empty, and a capacity bounded LRU.
package store

import (
	"errors"
	"fmt"
	"strconv"
)

// Store is the operation set every strategy implements.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Misses: Get and Remove report absence with false, never with an error.
// - Clear returns the store to the state of a freshly built one.
type Store[K comparable, V any] interface {
	Get(key K) (ValueHolder[V], bool)
	Put(key K, val V)
	Remove(key K) (ValueHolder[V], bool)
	Clear()
}

type Type string

const (
	TypeUnbounded Type = "unbounded"
	TypeWeak      Type = "weak"
	TypeLRU       Type = "lru"
)

// Property names understood by ParseProperties.
const (
	PropertyType     = "dataStoreType"
	PropertyCapacity = "capacity"
)

var (
	ErrUnknownType     = errors.New("store: unknown store type")
	ErrInvalidCapacity = errors.New("store: capacity must not be negative")
)

// ParseType maps a configured strategy name to a Type. An empty name selects
// the unbounded store.
func ParseType(name string) (Type, error) {
	switch name {
	case "", "unbounded", "basic":
		return TypeUnbounded, nil
	case "weak", "weakRef", "weak-reference":
		return TypeWeak, nil
	case "lru", "LRU":
		return TypeLRU, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
}

type Options struct {
	Type Type
	// Capacity bounds the LRU store. Zero selects DefaultCapacity.
	Capacity int
}

var DefaultOptions = Options{
	Type: TypeUnbounded,
}

func (o Options) Validate() error {
	if _, err := ParseType(string(o.Type)); err != nil {
		return err
	}
	if o.Capacity < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, o.Capacity)
	}
	return nil
}

// ParseProperties builds Options from string properties using the
// dataStoreType and capacity keys. Missing keys keep their defaults.
func ParseProperties(props map[string]string) (Options, error) {
	opts := DefaultOptions

	typ, err := ParseType(props[PropertyType])
	if err != nil {
		return Options{}, err
	}
	opts.Type = typ

	if raw, ok := props[PropertyCapacity]; ok {
		capacity, err := strconv.Atoi(raw)
		if err != nil {
			return Options{}, fmt.Errorf("store: invalid capacity %q: %w", raw, err)
		}
		opts.Capacity = capacity
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// New builds the strategy selected by opts. Values are stored by pointer so
// that every strategy, the weak one included, can hold them.
func New[K comparable, T any](opts Options) (Store[K, *T], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	typ, _ := ParseType(string(opts.Type))
	switch typ {
	case TypeWeak:
		return NewWeakRef[K, T](), nil
	case TypeLRU:
		capacity := opts.Capacity
		if capacity == 0 {
			capacity = DefaultCapacity
		}
		return NewLRU[K, *T](capacity), nil
	default:
		return NewUnbounded[K, *T](), nil
	}
}

var (
	_ Store[string, int]  = (*Unbounded[string, int])(nil)
	_ Store[string, *int] = (*WeakRef[string, int])(nil)
	_ Store[string, int]  = (*LRU[string, int])(nil)
)

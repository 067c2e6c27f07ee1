package store

import "sync"

// Unbounded is a plain concurrent map of strong holders. Nothing is evicted.
type Unbounded[K comparable, V any] struct {
	entries sync.Map
}

func NewUnbounded[K comparable, V any]() *Unbounded[K, V] {
	return &Unbounded[K, V]{}
}

func (s *Unbounded[K, V]) Get(key K) (ValueHolder[V], bool) {
	v, ok := s.entries.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*StrongHolder[V]), true
}

func (s *Unbounded[K, V]) Put(key K, val V) {
	s.entries.Store(key, NewStrongHolder(val))
}

func (s *Unbounded[K, V]) Remove(key K) (ValueHolder[V], bool) {
	v, ok := s.entries.LoadAndDelete(key)
	if !ok {
		return nil, false
	}
	return v.(*StrongHolder[V]), true
}

func (s *Unbounded[K, V]) Clear() {
	s.entries.Clear()
}

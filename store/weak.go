package store

import (
	"runtime"
	"sync"
)

// WeakRef maps keys to weak holders. A slot whose value was reclaimed reads as
// a miss and is dropped by a runtime cleanup shortly after collection.
type WeakRef[K comparable, T any] struct {
	entries sync.Map
}

type weakSlot[K comparable, T any] struct {
	key    K
	holder *WeakHolder[T]
}

func NewWeakRef[K comparable, T any]() *WeakRef[K, T] {
	return &WeakRef[K, T]{}
}

// Get returns the holder stored for key. The holder may already read absent.
func (s *WeakRef[K, T]) Get(key K) (ValueHolder[*T], bool) {
	v, ok := s.entries.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*WeakHolder[T]), true
}

func (s *WeakRef[K, T]) Put(key K, val *T) {
	h := NewWeakHolder(val)
	s.entries.Store(key, h)
	if val != nil {
		runtime.AddCleanup(val, s.reclaim, weakSlot[K, T]{key: key, holder: h})
	}
}

// Remove always deletes the mapping, whatever the state of its value.
func (s *WeakRef[K, T]) Remove(key K) (ValueHolder[*T], bool) {
	v, ok := s.entries.LoadAndDelete(key)
	if !ok {
		return nil, false
	}
	return v.(*WeakHolder[T]), true
}

func (s *WeakRef[K, T]) Clear() {
	s.entries.Clear()
}

// reclaim runs after the value behind slot.holder is collected. Only the
// holder that was registered is deleted; a later Put for the key survives.
func (s *WeakRef[K, T]) reclaim(slot weakSlot[K, T]) {
	s.entries.CompareAndDelete(slot.key, slot.holder)
}

func (s *WeakRef[K, T]) len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

package store

import "weak"

// ValueHolder wraps a stored value and decides how long it stays reachable.
// Value reports false once the value is gone.
type ValueHolder[V any] interface {
	Value() (V, bool)
}

// StrongHolder keeps its value until the holder itself is dropped.
type StrongHolder[V any] struct {
	value V
}

func NewStrongHolder[V any](value V) *StrongHolder[V] {
	return &StrongHolder[V]{value: value}
}

func (h *StrongHolder[V]) Value() (V, bool) {
	return h.value, true
}

// WeakHolder does not keep its value alive. Once nothing else references the
// value the runtime may reclaim it at any time, after which Value reports
// absence. Reclamation timing belongs to the garbage collector and must not be
// used as a deterministic delete.
type WeakHolder[T any] struct {
	ptr weak.Pointer[T]
}

func NewWeakHolder[T any](value *T) *WeakHolder[T] {
	h := &WeakHolder[T]{}
	if value != nil {
		h.ptr = weak.Make(value)
	}
	return h
}

func (h *WeakHolder[T]) Value() (*T, bool) {
	p := h.ptr.Value()
	return p, p != nil
}

var (
	_ ValueHolder[int]  = (*StrongHolder[int])(nil)
	_ ValueHolder[*int] = (*WeakHolder[int])(nil)
)

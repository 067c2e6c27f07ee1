package store

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 5 * time.Second
	tick    = 10 * time.Millisecond
)

func TestWeakRef_GetPutRemove(t *testing.T) {
	s := NewWeakRef[string, payload]()
	p := &payload{name: "a"}

	_, ok := s.Get("a")
	assert.False(t, ok)

	s.Put("a", p)
	h, ok := s.Get("a")
	require.True(t, ok)
	got, ok := h.Value()
	require.True(t, ok)
	assert.Same(t, p, got)

	h, ok = s.Remove("a")
	require.True(t, ok)
	got, _ = h.Value()
	assert.Same(t, p, got)

	_, ok = s.Get("a")
	assert.False(t, ok, "remove must delete the mapping")
	assert.Equal(t, 0, s.len())

	_, ok = s.Remove("a")
	assert.False(t, ok)
	runtime.KeepAlive(p)
}

func TestWeakRef_Clear(t *testing.T) {
	s := NewWeakRef[string, payload]()
	a, b := &payload{name: "a"}, &payload{name: "b"}
	s.Put("a", a)
	s.Put("b", b)

	s.Clear()
	assert.Equal(t, 0, s.len())
	_, ok := s.Get("a")
	assert.False(t, ok)
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

func TestWeakRef_Reclaimed(t *testing.T) {
	s := NewWeakRef[string, payload]()
	s.Put("gone", &payload{name: "gone"})

	require.Eventually(t, func() bool {
		runtime.GC()
		h, ok := s.Get("gone")
		if !ok {
			return true
		}
		_, live := h.Value()
		return !live
	}, waitFor, tick)

	// The cleanup eventually drops the slot itself.
	require.Eventually(t, func() bool {
		runtime.GC()
		return s.len() == 0
	}, waitFor, tick)
}

func TestWeakRef_RemoveAfterReclaim(t *testing.T) {
	s := NewWeakRef[string, payload]()
	s.Put("k", &payload{name: "k"})

	require.Eventually(t, func() bool {
		runtime.GC()
		h, ok := s.Get("k")
		if !ok {
			return true
		}
		_, live := h.Value()
		return !live
	}, waitFor, tick)

	s.Remove("k")
	_, ok := s.Get("k")
	assert.False(t, ok)
}

func TestWeakRef_ReclaimKeepsNewerValue(t *testing.T) {
	s := NewWeakRef[string, payload]()
	s.Put("k", &payload{name: "old"})

	kept := &payload{name: "new"}
	s.Put("k", kept)

	for range 5 {
		runtime.GC()
		time.Sleep(tick)
	}

	h, ok := s.Get("k")
	require.True(t, ok)
	got, ok := h.Value()
	require.True(t, ok)
	assert.Same(t, kept, got)
	runtime.KeepAlive(kept)
}

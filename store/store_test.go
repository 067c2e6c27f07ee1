package store

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		name string
		want Type
	}{
		{"", TypeUnbounded},
		{"basic", TypeUnbounded},
		{"unbounded", TypeUnbounded},
		{"weakRef", TypeWeak},
		{"weak-reference", TypeWeak},
		{"weak", TypeWeak},
		{"lru", TypeLRU},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	_, err := ParseType("fifo")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestNew(t *testing.T) {
	s, err := New[string, int](Options{})
	require.NoError(t, err)
	assert.IsType(t, &Unbounded[string, *int]{}, s)

	s, err = New[string, int](Options{Type: TypeWeak})
	require.NoError(t, err)
	assert.IsType(t, &WeakRef[string, int]{}, s)

	s, err = New[string, int](Options{Type: TypeLRU})
	require.NoError(t, err)
	lru, ok := s.(*LRU[string, *int])
	require.True(t, ok)
	assert.Equal(t, DefaultCapacity, lru.Capacity())

	s, err = New[string, int](Options{Type: TypeLRU, Capacity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, s.(*LRU[string, *int]).Capacity())

	_, err = New[string, int](Options{Type: TypeLRU, Capacity: -1})
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = New[string, int](Options{Type: "fifo"})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestParseProperties(t *testing.T) {
	opts, err := ParseProperties(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions, opts)

	opts, err = ParseProperties(map[string]string{
		PropertyType:     "lru",
		PropertyCapacity: "2",
	})
	require.NoError(t, err)
	assert.Equal(t, Options{Type: TypeLRU, Capacity: 2}, opts)

	_, err = ParseProperties(map[string]string{PropertyCapacity: "many"})
	assert.Error(t, err)

	_, err = ParseProperties(map[string]string{PropertyCapacity: "-3"})
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestStores_ClearThenReuse(t *testing.T) {
	for _, typ := range []Type{TypeUnbounded, TypeWeak, TypeLRU} {
		t.Run(string(typ), func(t *testing.T) {
			s, err := New[string, string](Options{Type: typ})
			require.NoError(t, err)

			v := "value"
			p := &v
			s.Put("k", p)
			s.Clear()

			_, ok := s.Get("k")
			assert.False(t, ok)
			_, ok = s.Remove("k")
			assert.False(t, ok)

			s.Put("k", p)
			h, ok := s.Get("k")
			require.True(t, ok)
			got, ok := h.Value()
			require.True(t, ok)
			assert.Equal(t, "value", *got)
			runtime.KeepAlive(p)
		})
	}
}

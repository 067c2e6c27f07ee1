package store

import (
	"fmt"
	"sync"
)

// DefaultCapacity is used when an LRU store is configured without a capacity.
const DefaultCapacity = 32

// LRU is a capacity bounded store. Entries are threaded through a doubly
// linked list ordered by last access: first is the most recently used entry,
// last the least recently used one.
//
// A single mutex covers both the map and the list, so a lookup and the
// promotion that follows it happen in one critical section and can never race
// with the eviction of the same entry.
type LRU[K comparable, V any] struct {
	mutex    sync.Mutex
	items    map[K]*lruEntry[K, V]
	first    *lruEntry[K, V]
	last     *lruEntry[K, V]
	capacity int
	size     int
}

type lruEntry[K comparable, V any] struct {
	key    K
	holder ValueHolder[V]
	prev   *lruEntry[K, V]
	next   *lruEntry[K, V]
}

// NewLRU creates an LRU store holding at most capacity entries. A capacity of
// zero is valid: every insert is evicted right away. Negative values are
// treated as zero.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &LRU[K, V]{
		items:    make(map[K]*lruEntry[K, V]),
		capacity: capacity,
	}
}

// Get returns the holder for key and promotes the entry to most recently used.
func (c *LRU[K, V]) Get(key K) (ValueHolder[V], bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ent, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(ent)
	return ent.holder, true
}

// Put inserts or overwrites key. Inserting past capacity evicts the least
// recently used entry in the same critical section.
func (c *LRU[K, V]) Put(key K, val V) {
	holder := NewStrongHolder(val)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if ent, ok := c.items[key]; ok {
		ent.holder = holder
		c.moveToFront(ent)
		return
	}

	ent := &lruEntry[K, V]{key: key, holder: holder}
	c.items[key] = ent
	c.pushFront(ent)
	c.size++

	for c.size > c.capacity {
		c.removeEntry(c.last)
	}
}

func (c *LRU[K, V]) Remove(key K) (ValueHolder[V], bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ent, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.removeEntry(ent)
	return ent.holder, true
}

func (c *LRU[K, V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[K]*lruEntry[K, V])
	c.first = nil
	c.last = nil
	c.size = 0
}

// Len returns the number of entries currently held.
func (c *LRU[K, V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.size
}

func (c *LRU[K, V]) Capacity() int {
	return c.capacity
}

// Keys returns the keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	keys := make([]K, 0, c.size)
	for ent := c.first; ent != nil; ent = ent.next {
		keys = append(keys, ent.key)
	}
	return keys
}

func (c *LRU[K, V]) moveToFront(ent *lruEntry[K, V]) {
	if ent == c.first {
		return
	}
	c.unlink(ent)
	c.pushFront(ent)
}

func (c *LRU[K, V]) pushFront(ent *lruEntry[K, V]) {
	ent.prev = nil
	ent.next = c.first
	if c.first != nil {
		c.first.prev = ent
	}
	c.first = ent
	if c.last == nil {
		c.last = ent
	}
}

func (c *LRU[K, V]) unlink(ent *lruEntry[K, V]) {
	if ent.prev != nil {
		ent.prev.next = ent.next
	} else {
		c.first = ent.next
	}
	if ent.next != nil {
		ent.next.prev = ent.prev
	} else {
		c.last = ent.prev
	}
	ent.prev = nil
	ent.next = nil
}

func (c *LRU[K, V]) removeEntry(ent *lruEntry[K, V]) {
	if ent == nil {
		panic(fmt.Sprintf("store: lru list empty with size %d", c.size))
	}
	c.unlink(ent)
	delete(c.items, ent.key)
	c.size--
}

// verify walks the list in both directions and checks it against the map.
func (c *LRU[K, V]) verify() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if len(c.items) != c.size {
		return fmt.Errorf("map has %d items, size is %d", len(c.items), c.size)
	}
	if c.size > c.capacity {
		return fmt.Errorf("size %d exceeds capacity %d", c.size, c.capacity)
	}
	if (c.first == nil) != (c.last == nil) {
		return fmt.Errorf("first and last disagree on emptiness")
	}

	n := 0
	var prev *lruEntry[K, V]
	for ent := c.first; ent != nil; ent = ent.next {
		if n >= c.size {
			return fmt.Errorf("forward walk longer than size %d", c.size)
		}
		if ent.prev != prev {
			return fmt.Errorf("broken prev link at %v", ent.key)
		}
		if c.items[ent.key] != ent {
			return fmt.Errorf("list node %v not in map", ent.key)
		}
		prev = ent
		n++
	}
	if n != c.size {
		return fmt.Errorf("forward walk found %d entries, size is %d", n, c.size)
	}
	if prev != c.last {
		return fmt.Errorf("forward walk does not end at last")
	}

	n = 0
	for ent := c.last; ent != nil; ent = ent.prev {
		n++
		if n > c.size {
			return fmt.Errorf("backward walk longer than size %d", c.size)
		}
	}
	if n != c.size {
		return fmt.Errorf("backward walk found %d entries, size is %d", n, c.size)
	}
	return nil
}

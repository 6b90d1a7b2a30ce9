package storage

// handle addresses a node in the arena. nilHandle marks the end of the list.
type handle int32

const nilHandle handle = -1

type node struct {
	key   string
	value string
	prev  handle
	next  handle
}

// SimpleLRU is a byte-bounded LRU store.
//
// head is the most recently used entry, tail the next eviction candidate.
// It is not safe for concurrent use.
type SimpleLRU struct {
	maxSize int
	size    int

	nodes []node
	free  []handle
	index map[string]handle
	head  handle
	tail  handle

	hits      uint64
	misses    uint64
	evictions uint64
}

var _ Store = (*SimpleLRU)(nil)

// New creates a new LRU store holding at most maxSize bytes of keys and values.
// A negative maxSize is treated as 0.
func New(maxSize int) *SimpleLRU {
	return &SimpleLRU{
		maxSize: max(maxSize, 0),
		index:   make(map[string]handle),
		head:    nilHandle,
		tail:    nilHandle,
	}
}

// Put inserts a new entry or overwrites an existing one, then promotes it.
// Older entries are evicted from the tail until the byte budget holds.
func (c *SimpleLRU) Put(key, value string) bool {
	if entrySize(key, value) > c.maxSize {
		return false
	}

	if h, ok := c.index[key]; ok {
		c.update(h, value)
		return true
	}

	c.insert(key, value)
	return true
}

// PutIfAbsent inserts key only if it is not present yet.
func (c *SimpleLRU) PutIfAbsent(key, value string) bool {
	if _, ok := c.index[key]; ok {
		return false
	}
	if entrySize(key, value) > c.maxSize {
		return false
	}

	c.insert(key, value)
	return true
}

// Set overwrites the value of an existing key and promotes it.
func (c *SimpleLRU) Set(key, value string) bool {
	h, ok := c.index[key]
	if !ok {
		return false
	}
	if entrySize(key, value) > c.maxSize {
		return false
	}

	c.update(h, value)
	return true
}

// Delete removes key.
func (c *SimpleLRU) Delete(key string) bool {
	h, ok := c.index[key]
	if !ok {
		return false
	}

	c.remove(h)
	return true
}

// Get returns the value for key. A hit promotes the entry.
func (c *SimpleLRU) Get(key string) (string, bool) {
	h, ok := c.index[key]
	if !ok {
		c.misses++
		return "", false
	}

	c.hits++
	c.moveToFront(h)
	return c.nodes[h].value, true
}

// Len returns the number of live entries.
func (c *SimpleLRU) Len() int {
	return len(c.index)
}

// Size returns the bytes used by live entries.
func (c *SimpleLRU) Size() int {
	return c.size
}

// Capacity returns the byte budget.
func (c *SimpleLRU) Capacity() int {
	return c.maxSize
}

// Keys returns all keys from most to least recently used.
func (c *SimpleLRU) Keys() []string {
	keys := make([]string, 0, len(c.index))
	for h := c.head; h != nilHandle; h = c.nodes[h].next {
		keys = append(keys, c.nodes[h].key)
	}
	return keys
}

// Stats returns a usage snapshot.
func (c *SimpleLRU) Stats() Stats {
	return Stats{
		Len:       len(c.index),
		Size:      c.size,
		Capacity:  c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// Reset drops every entry, releasing the list from head to tail.
func (c *SimpleLRU) Reset() {
	for h := c.head; h != nilHandle; {
		next := c.nodes[h].next
		c.nodes[h] = node{}
		h = next
	}

	c.nodes = nil
	c.free = nil
	c.index = make(map[string]handle)
	c.head = nilHandle
	c.tail = nilHandle
	c.size = 0
}

func (c *SimpleLRU) insert(key, value string) {
	h := c.alloc(key, value)
	c.index[key] = h
	c.size += entrySize(key, value)
	c.pushFront(h)
	c.evict(h)
}

// update replaces the value in place. The caller has checked that the
// entry alone fits.
func (c *SimpleLRU) update(h handle, value string) {
	n := &c.nodes[h]
	c.size += len(value) - len(n.value)
	n.value = value
	c.moveToFront(h)
	c.evict(h)
}

// evict drops tail entries until the budget holds. keep is at the head and
// is never evicted.
func (c *SimpleLRU) evict(keep handle) {
	for c.size > c.maxSize && c.tail != keep {
		c.remove(c.tail)
		c.evictions++
	}
}

func (c *SimpleLRU) remove(h handle) {
	c.unlink(h)
	n := &c.nodes[h]
	delete(c.index, n.key)
	c.size -= entrySize(n.key, n.value)
	c.release(h)
}

// Internal list helpers

func (c *SimpleLRU) alloc(key, value string) handle {
	n := node{key: key, value: value, prev: nilHandle, next: nilHandle}
	if last := len(c.free) - 1; last >= 0 {
		h := c.free[last]
		c.free = c.free[:last]
		c.nodes[h] = n
		return h
	}
	c.nodes = append(c.nodes, n)
	return handle(len(c.nodes) - 1)
}

func (c *SimpleLRU) release(h handle) {
	c.nodes[h] = node{prev: nilHandle, next: nilHandle}
	c.free = append(c.free, h)
}

func (c *SimpleLRU) pushFront(h handle) {
	n := &c.nodes[h]
	n.prev = nilHandle
	n.next = c.head
	if c.head != nilHandle {
		c.nodes[c.head].prev = h
	} else {
		c.tail = h
	}
	c.head = h
}

func (c *SimpleLRU) unlink(h handle) {
	n := &c.nodes[h]
	if n.prev != nilHandle {
		c.nodes[n.prev].next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nilHandle {
		c.nodes[n.next].prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev = nilHandle
	n.next = nilHandle
}

func (c *SimpleLRU) moveToFront(h handle) {
	if c.head == h {
		return
	}
	c.unlink(h)
	c.pushFront(h)
}

package storage

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Validate checks the structural invariants of the store:
//   - the recency list and the index hold exactly the same entries
//   - prev/next links are symmetric and the list is acyclic
//   - every arena slot is either linked or on the free stack, never both
//   - the tracked size equals the recomputed size and fits the budget
//
// It is O(n) and meant for tests and debugging.
func (c *SimpleLRU) Validate() error {
	slots := uint(len(c.nodes))
	seen := bitset.New(slots)

	count, size := 0, 0
	prev := nilHandle
	for h := c.head; h != nilHandle; h = c.nodes[h].next {
		if h < 0 || uint(h) >= slots {
			return fmt.Errorf("%w: handle %d out of range [0,%d)", ErrCorrupted, h, slots)
		}
		if seen.Test(uint(h)) {
			return fmt.Errorf("%w: cycle at handle %d", ErrCorrupted, h)
		}
		seen.Set(uint(h))

		n := &c.nodes[h]
		if n.prev != prev {
			return fmt.Errorf("%w: handle %d has prev %d, want %d", ErrCorrupted, h, n.prev, prev)
		}
		if ih, ok := c.index[n.key]; !ok || ih != h {
			return fmt.Errorf("%w: key %q is linked at %d but indexed at %d (present=%t)", ErrCorrupted, n.key, h, ih, ok)
		}

		count++
		size += entrySize(n.key, n.value)
		prev = h
	}

	if prev != c.tail {
		return fmt.Errorf("%w: tail is %d, list ends at %d", ErrCorrupted, c.tail, prev)
	}
	if count != len(c.index) {
		return fmt.Errorf("%w: %d linked entries, %d indexed", ErrCorrupted, count, len(c.index))
	}

	for _, h := range c.free {
		if h < 0 || uint(h) >= slots {
			return fmt.Errorf("%w: free handle %d out of range [0,%d)", ErrCorrupted, h, slots)
		}
		if seen.Test(uint(h)) {
			return fmt.Errorf("%w: handle %d is both free and in use", ErrCorrupted, h)
		}
		seen.Set(uint(h))
	}
	if seen.Count() != slots {
		return fmt.Errorf("%w: %d of %d slots leaked", ErrCorrupted, slots-seen.Count(), slots)
	}

	if size != c.size {
		return fmt.Errorf("%w: tracked size %d, recomputed %d", ErrCorrupted, c.size, size)
	}
	if c.size < 0 || c.size > c.maxSize {
		return fmt.Errorf("%w: size %d outside [0,%d]", ErrCorrupted, c.size, c.maxSize)
	}
	return nil
}

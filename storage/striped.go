package storage

import (
	"fmt"
	"hash/maphash"
	"sync"
)

// DefaultStripes is the shard count used when NewStriped gets stripes <= 0.
const DefaultStripes = 16

type stripe struct {
	mu  sync.Mutex
	lru *SimpleLRU
}

// Striped is a hash-sharded store for concurrent workloads.
// Every shard is an independent SimpleLRU with its own mutex and its own
// slice of the byte budget, so recency and eviction are per shard and an
// entry must fit its shard's budget.
type Striped struct {
	stripes []*stripe
	seed    maphash.Seed
}

var _ Store = (*Striped)(nil)

// NewStriped creates a store with maxSize bytes split across stripes shards.
// The remainder of the division goes to the first shards.
func NewStriped(maxSize, stripes int) *Striped {
	if stripes <= 0 {
		stripes = DefaultStripes
	}
	maxSize = max(maxSize, 0)

	s := &Striped{
		stripes: make([]*stripe, stripes),
		seed:    maphash.MakeSeed(),
	}

	base, rem := maxSize/stripes, maxSize%stripes
	for i := range stripes {
		capacity := base
		if i < rem {
			capacity++
		}
		s.stripes[i] = &stripe{lru: New(capacity)}
	}

	return s
}

func (s *Striped) stripeFor(key string) *stripe {
	idx := maphash.String(s.seed, key) % uint64(len(s.stripes))
	return s.stripes[idx]
}

// Put implements Storage.
func (s *Striped) Put(key, value string) bool {
	st := s.stripeFor(key)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lru.Put(key, value)
}

// PutIfAbsent implements Storage.
func (s *Striped) PutIfAbsent(key, value string) bool {
	st := s.stripeFor(key)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lru.PutIfAbsent(key, value)
}

// Set implements Storage.
func (s *Striped) Set(key, value string) bool {
	st := s.stripeFor(key)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lru.Set(key, value)
}

// Delete implements Storage.
func (s *Striped) Delete(key string) bool {
	st := s.stripeFor(key)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lru.Delete(key)
}

// Get implements Storage.
func (s *Striped) Get(key string) (string, bool) {
	st := s.stripeFor(key)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lru.Get(key)
}

// Stats returns the sum over all shards.
func (s *Striped) Stats() Stats {
	var total Stats
	for _, st := range s.stripes {
		st.mu.Lock()
		total.add(st.lru.Stats())
		st.mu.Unlock()
	}
	return total
}

// StripeStats returns per-shard statistics.
func (s *Striped) StripeStats() []Stats {
	stats := make([]Stats, len(s.stripes))
	for i, st := range s.stripes {
		st.mu.Lock()
		stats[i] = st.lru.Stats()
		st.mu.Unlock()
	}
	return stats
}

// Reset clears every shard.
func (s *Striped) Reset() {
	for _, st := range s.stripes {
		st.mu.Lock()
		st.lru.Reset()
		st.mu.Unlock()
	}
}

// Validate validates every shard.
func (s *Striped) Validate() error {
	for i, st := range s.stripes {
		st.mu.Lock()
		err := st.lru.Validate()
		st.mu.Unlock()
		if err != nil {
			return fmt.Errorf("stripe %d: %w", i, err)
		}
	}
	return nil
}

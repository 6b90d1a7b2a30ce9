package storage

import "errors"

// ErrCorrupted is returned by Validate when the index and the recency list
// disagree. It always indicates a bug, never a user error.
var ErrCorrupted = errors.New("storage corrupted")

// Storage is the five-operation contract consumed by the server layer.
// Size accounting is len(key)+len(value) bytes per entry.
type Storage interface {
	// Put inserts or overwrites key and promotes it to most recently used.
	// Returns false without any change if the entry alone exceeds capacity.
	Put(key, value string) bool
	// PutIfAbsent behaves like Put but returns false if key already exists.
	PutIfAbsent(key, value string) bool
	// Set overwrites an existing key only.
	Set(key, value string) bool
	// Delete removes key. Returns false if it was absent.
	Delete(key string) bool
	// Get returns the value for key and promotes it to most recently used.
	Get(key string) (string, bool)
}

// Store is a Storage that also reports usage and can be cleared.
type Store interface {
	Storage
	// Stats returns a usage snapshot.
	Stats() Stats
	// Reset drops every entry. Capacity is unchanged.
	Reset()
}

// Stats is a point-in-time usage snapshot of a store.
type Stats struct {
	Len       int // Number of live entries
	Size      int // Bytes used by live entries
	Capacity  int // Byte budget
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

func (s *Stats) add(o Stats) {
	s.Len += o.Len
	s.Size += o.Size
	s.Capacity += o.Capacity
	s.Hits += o.Hits
	s.Misses += o.Misses
	s.Evictions += o.Evictions
}

func entrySize(key, value string) int {
	return len(key) + len(value)
}

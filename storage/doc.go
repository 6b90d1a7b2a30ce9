// Package storage provides the bounded key-value stores behind kvengine.
//
// # SimpleLRU
//
// SimpleLRU maps string keys to string values under a byte budget. Every entry
// costs len(key)+len(value) bytes and the sum over live entries never exceeds
// the capacity given to New. Writes that do not fit are rejected without any
// change; writes that fit evict least recently used entries from the tail
// until the budget holds again.
//
// Entries live in an arena and are linked by int32 handles rather than
// pointers, so the recency list is a plain slice of nodes plus a free-handle
// stack. The index maps key → handle.
//
// SimpleLRU is NOT safe for concurrent use. Wrap it in Locked (one mutex for
// all calls) or use Striped (hash-sharded, one mutex per shard) when several
// goroutines share a store.
//
// # Validation
//
// Validate walks the recency list and the arena and reports any broken
// invariant as an error wrapping ErrCorrupted:
//
//	if err := lru.Validate(); err != nil {
//	    panic(err) // programmer error
//	}
package storage

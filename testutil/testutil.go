package testutil

import (
	"math"
	"math/rand"
	"strconv"
	"sync"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Op identifies a storage operation in a generated workload.
type Op uint8

const (
	OpPut Op = iota
	OpPutIfAbsent
	OpSet
	OpDelete
	OpGet
	numOps
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpPut:
		return "put"
	case OpPutIfAbsent:
		return "put_if_absent"
	case OpSet:
		return "set"
	case OpDelete:
		return "delete"
	case OpGet:
		return "get"
	default:
		return "op(" + strconv.Itoa(int(o)) + ")"
	}
}

// Step is one generated storage call.
type Step struct {
	Op    Op
	Key   string
	Value string
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Key returns a random string of exactly n bytes.
func (r *RNG) Key(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringLocked(n)
}

// Value returns a random string with a length in [minLen, maxLen].
func (r *RNG) Value(minLen, maxLen int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringLocked(r.lengthLocked(minLen, maxLen))
}

func (r *RNG) lengthLocked(minLen, maxLen int) int {
	if maxLen <= minLen {
		return minLen
	}
	return minLen + r.rand.Intn(maxLen-minLen+1)
}

func (r *RNG) stringLocked(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return string(b)
}

// Keys returns n distinct keys of roughly the given length. Each key is
// prefixed by its index so that keys never collide.
func (r *RNG) Keys(n, length int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, n)
	for i := range n {
		prefix := strconv.Itoa(i) + ":"
		keys[i] = prefix + r.stringLocked(max(length-len(prefix), 0))
	}
	return keys
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives a heavy head (hot keys).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Inverse transform over the cumulative distribution
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// Workload generates n random steps over the given key space. Keys and
// operations are drawn uniformly; values have a length in [minVal, maxVal].
func (r *RNG) Workload(n int, keys []string, minVal, maxVal int) []Step {
	r.mu.Lock()
	defer r.mu.Unlock()

	steps := make([]Step, n)
	for i := range steps {
		steps[i] = Step{
			Op:    Op(r.rand.Intn(int(numOps))),
			Key:   keys[r.rand.Intn(len(keys))],
			Value: r.stringLocked(r.lengthLocked(minVal, maxVal)),
		}
	}
	return steps
}

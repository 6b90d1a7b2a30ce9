// Package testutil provides testing utilities for kvengine.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic random source for generating keys, values
// and operation streams used by the randomized storage tests.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	key := rng.Key(8)          // 8 random lowercase bytes
//	val := rng.Value(4, 16)    // length in [4, 16]
//	k := rng.Zipf(100, 1.2)    // skewed key index for hot-key workloads
//
// # Workloads
//
//	steps := rng.Workload(10000, rng.Keys(64, 4), 1, 8)
//	for _, s := range steps {
//	    switch s.Op { ... }
//	}
package testutil

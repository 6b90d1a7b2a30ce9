package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hupe1980/kvengine"
	"github.com/hupe1980/kvengine/testutil"
)

func main() {
	seed := int64(4711)
	size := 50000
	writers := 8
	capacity := 1 << 20
	hot := 1000

	ctx := context.Background()

	eng, err := kvengine.New(
		kvengine.WithCapacity(capacity),
		kvengine.WithStripes(16),
		kvengine.WithWatermarks(2, 16),
		kvengine.WithMaxQueueSize(4096),
		//kvengine.WithLogLevel(slog.LevelDebug),
	)
	if err != nil {
		log.Fatal(err)
	}

	rng := testutil.NewRNG(seed)
	keys := rng.Keys(size, 16)
	values := make([]string, size)
	for i := range values {
		values[i] = rng.Value(8, 64)
	}

	fmt.Println("--- Put ---")
	fmt.Println("Capacity:", capacity)
	fmt.Println("Size:", size)
	fmt.Println("Writers:", writers)

	start := time.Now()
	run(writers, size, func(i int) error {
		_, err := eng.Put(ctx, keys[i], values[i])
		return err
	})
	end := time.Since(start)

	fmt.Printf("Seconds: %.2f\n\n", end.Seconds())
	printStats(eng.Stats())
	fmt.Println()

	fmt.Println("--- Get (zipf) ---")

	start = time.Now()
	run(writers, size, func(int) error {
		_, _, err := eng.Get(ctx, keys[rng.Zipf(hot, 1.1)])
		return err
	})
	end = time.Since(start)

	fmt.Printf("Seconds: %.2f\n\n", end.Seconds())
	printStats(eng.Stats())

	if err := eng.Close(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(workers, n int, fn func(i int) error) {
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := w; i < n; i += workers {
				if err := fn(i); err != nil {
					log.Fatal(err)
				}
			}
		}()
	}
	wg.Wait()
}

func printStats(s kvengine.Stats) {
	fmt.Printf("Entries: %d, Bytes: %d/%d\n", s.Storage.Len, s.Storage.Size, s.Storage.Capacity)
	fmt.Printf("Hits: %d, Misses: %d, Evictions: %d\n", s.Storage.Hits, s.Storage.Misses, s.Storage.Evictions)
	fmt.Printf("Workers: %d, Executed: %d, Rejected: %d\n", s.Executor.Workers, s.Executor.Executed, s.Executor.Rejected)
}

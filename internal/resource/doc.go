// Package resource implements the admission Controller that sits in front of
// the executor.
//
// The Controller manages two limits:
//
//   - In-flight callers: how many goroutines may wait on a result at once
//     (weighted semaphore, blocking with context)
//   - Submission rate: how fast tasks may be handed to the executor
//     (token bucket, non-blocking or blocking with context)
//
// # Architecture
//
//	┌───────────────────────────────────────────────┐
//	│               Admission Controller            │
//	├───────────────────────┬───────────────────────┤
//	│  In-flight (sem)      │  Submit rate (bucket) │
//	├───────────────────────┼───────────────────────┤
//	│  AcquireInFlight      │  AllowSubmit          │
//	│  TryAcquireInFlight   │  WaitSubmit           │
//	│  ReleaseInFlight      │                       │
//	└───────────────────────┴───────────────────────┘
//
// # In-flight Limits
//
//	rc := resource.NewController(resource.Config{
//	    MaxInFlight: 256,
//	})
//
//	if err := rc.AcquireInFlight(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseInFlight()
//
// # Submission Rate
//
//	rc := resource.NewController(resource.Config{
//	    SubmitRatePerSec: 10000,
//	})
//
//	if !rc.AllowSubmit() {
//	    // reject: server busy
//	}
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
package resource

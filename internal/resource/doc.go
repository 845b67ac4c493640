// Package resource implements memory accounting and IO throttling for
// compressed caches.
//
//   - Memory: track and limit the bytes held by at-rest block buffers
//     (non-blocking, fail-fast)
//   - IO: rate-limit dumps so that a large export does not saturate the sink
//
// # Memory Management
//
// A weighted semaphore enforces the hard limit and an atomic counter tracks
// usage. AcquireMemory never blocks:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30,
//	})
//
//	if err := rc.AcquireMemory(4096); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(4096)
//
// # IO Rate Limiting
//
// A token bucket limits dump throughput:
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 100 * 1024 * 1024,
//	})
//	w := resource.NewRateLimitedWriter(ctx, file, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource

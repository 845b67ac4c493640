// Package cmem provides a compressed, block-addressable substitute for a
// flat array of float64 values.
//
// The array is partitioned into fixed-size logical blocks. Each block is
// kept compressed at rest by a pluggable codec, and only the one or two
// blocks currently being read or written are materialized in working
// buffers.
//
// # Quick Start
//
//	c, _ := zfp.New(zfp.Config{Mode: zfp.ModeAccuracy, Tolerance: 1e-9})
//	m, _ := cmem.New(c, 1024, 4096, cmem.WithDynamicSizing(true))
//	defer m.Close()
//
//	wb, _ := cmem.NewWorkBuffer(4096, true)
//	_ = m.Set(wb, 42, 3.14)
//	v, _ := m.Get(wb, 42)
//
// Or from the environment:
//
//	cfg, _ := cmem.ParseConfig() // CMEM_CODEC, CMEM_VALUES_PER_BLOCK, ...
//	m, _ := cfg.NewMemory(nBlocks)
//	wb, _ := cfg.NewWorkBuffer()
//
// # Codecs
//
//   - zfp: rate, precision, accuracy or reversible block transform
//   - fpzip: fixed-precision Lorenzo predictor (lossless at 64 bits)
//   - fpc: lossless FCM/DFCM predictor
//   - lz4, zstd, s2: general-purpose byte compressors over shuffled values
//   - none: pass-through
//
// # Caching
//
// A WorkBuffer holds one or two working buffers. An access whose block is
// resident is served directly. On a miss the buffer used least recently is
// written back (every resident block counts as dirty) and the requested
// block is loaded into it. A block that has never been written reads as
// zeros without touching the codec.
//
// Values reach at-rest storage only when their buffer is evicted, or on
// Flush and Dump.
//
// # Errors
//
// Accesses outside the array return 0 and an *IndexError (ErrOutOfRange)
// without changing any state. Misuse such as a nil buffer or a mismatched
// WorkBuffer returns a *ContractError (ErrContract). Constructors reject bad
// geometry and codec settings with a *ConfigError (ErrInvalidConfig) before
// allocating.
//
// # Thread Safety
//
// A Memory and the WorkBuffers used with it must be driven by a single
// goroutine.
package cmem

// Package mem provides memory allocation utilities.
package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of working buffers (one cache line on
// common hardware, 64 bytes).
const Alignment = 64

// AllocAligned allocates a byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := int((Alignment - (addr & (Alignment - 1))) & (Alignment - 1))

	return buf[offset : offset+size]
}

// AllocAlignedFloat64 allocates a zeroed float64 slice of the given length
// with 64-byte alignment.
func AllocAlignedFloat64(n int) []float64 {
	if n <= 0 {
		return nil
	}

	b := AllocAligned(n * 8)

	// 64-byte alignment implies the 8-byte alignment float64 requires.
	ptr := unsafe.Pointer(&b[0])             //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*float64)(ptr), n) //nolint:gosec // unsafe is required for memory alignment
}
